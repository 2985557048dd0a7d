package repository

import (
	"time"

	"github.com/nimasrn/card-gateway/internal/model"
)

// cardEntity is the stored shape of a card. The recent-transactions
// projection is deliberately absent.
type cardEntity struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	CardNumber     string         `json:"cardNumber"`
	ExpirationDate string         `json:"expirationDate"`
	CVV            string         `json:"cvv"`
	Balance        int64          `json:"balance"`
	IsFrozen       bool           `json:"isFrozen"`
	CardType       model.CardType `json:"cardType"`
	CreatedAt      time.Time      `json:"createdAt"`
	ShowCardNumber bool           `json:"showCardNumber"`
}

func toCardEntity(m *model.Card) *cardEntity {
	if m == nil {
		return nil
	}
	return &cardEntity{
		ID:             m.ID,
		Name:           m.Name,
		CardNumber:     m.CardNumber,
		ExpirationDate: m.ExpirationDate,
		CVV:            m.CVV,
		Balance:        m.Balance,
		IsFrozen:       m.IsFrozen,
		CardType:       m.CardType,
		CreatedAt:      m.CreatedAt,
		ShowCardNumber: m.ShowCardNumber,
	}
}

func toCardModel(e *cardEntity) *model.Card {
	if e == nil {
		return nil
	}
	return &model.Card{
		ID:                 e.ID,
		Name:               e.Name,
		CardNumber:         e.CardNumber,
		ExpirationDate:     e.ExpirationDate,
		CVV:                e.CVV,
		Balance:            e.Balance,
		IsFrozen:           e.IsFrozen,
		CardType:           e.CardType,
		CreatedAt:          e.CreatedAt,
		ShowCardNumber:     e.ShowCardNumber,
		RecentTransactions: []*model.Transaction{},
	}
}

func toCardModels(entities []*cardEntity) []*model.Card {
	models := make([]*model.Card, len(entities))
	for i, e := range entities {
		models[i] = toCardModel(e)
	}
	return models
}
