package repository

import (
	"time"

	"github.com/nimasrn/card-gateway/internal/model"
	"github.com/shopspring/decimal"
)

type transactionEntity struct {
	ID           string                `json:"id"`
	CardID       string                `json:"cardId"`
	MerchantName string                `json:"merchantName"`
	Amount       decimal.Decimal       `json:"amount"`
	Type         model.TransactionType `json:"type"`
	Category     string                `json:"category"`
	Date         time.Time             `json:"date"`
	Description  string                `json:"description"`
	IconType     model.IconType        `json:"iconType"`
}

func toTransactionEntity(m *model.Transaction) *transactionEntity {
	if m == nil {
		return nil
	}
	return &transactionEntity{
		ID:           m.ID,
		CardID:       m.CardID,
		MerchantName: m.MerchantName,
		Amount:       m.Amount,
		Type:         m.Type,
		Category:     m.Category,
		Date:         m.Date,
		Description:  m.Description,
		IconType:     m.IconType,
	}
}

func toTransactionModel(e *transactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:           e.ID,
		CardID:       e.CardID,
		MerchantName: e.MerchantName,
		Amount:       e.Amount,
		Type:         e.Type,
		Category:     e.Category,
		Date:         e.Date,
		Description:  e.Description,
		IconType:     e.IconType,
	}
}

func toTransactionEntities(models []*model.Transaction) []*transactionEntity {
	entities := make([]*transactionEntity, len(models))
	for i, m := range models {
		entities[i] = toTransactionEntity(m)
	}
	return entities
}

func toTransactionModels(entities []*transactionEntity) []*model.Transaction {
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}
