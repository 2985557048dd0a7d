package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amounts travel as JSON numbers, not quoted strings. Quoted amounts are
// still accepted on decode.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

type IconType string

const (
	IconCard      IconType = "card"
	IconPlane     IconType = "plane"
	IconMegaphone IconType = "megaphone"
	IconShopping  IconType = "shopping"
)

type Transaction struct {
	ID           string          `json:"id"`
	CardID       string          `json:"cardId"`
	MerchantName string          `json:"merchantName"`
	Amount       decimal.Decimal `json:"amount"` // negative for debit
	Type         TransactionType `json:"type"`
	Category     string          `json:"category"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description"`
	IconType     IconType        `json:"iconType"`
}

// IsConsistent reports whether the type agrees with the amount sign.
// Nothing enforces this on write.
func (t *Transaction) IsConsistent() bool {
	return (t.Type == TransactionTypeCredit) == t.Amount.IsPositive()
}
