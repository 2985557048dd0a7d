package model

import (
	"errors"
	"strings"
	"time"
)

type CardType string

const (
	CardTypeDebit  CardType = "debit"
	CardTypeCredit CardType = "credit"
)

// RecentTransactionsLimit caps the projection attached to a card on read.
const RecentTransactionsLimit = 5

var ErrCardNameRequired = errors.New("card name is required")

type Card struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CardNumber     string    `json:"cardNumber"`
	ExpirationDate string    `json:"expirationDate"`
	CVV            string    `json:"cvv"`
	Balance        int64     `json:"balance"`
	IsFrozen       bool      `json:"isFrozen"`
	CardType       CardType  `json:"cardType"`
	CreatedAt      time.Time `json:"createdAt"`
	ShowCardNumber bool      `json:"showCardNumber"`

	// RecentTransactions is computed on every read and never persisted.
	RecentTransactions []*Transaction `json:"recentTransactions"`
}

// DisplayNumber returns the full card number when visibility is on,
// otherwise the masked form.
func (c *Card) DisplayNumber() string {
	if c.ShowCardNumber {
		return FormatCardNumber(c.CardNumber)
	}
	return MaskCardNumber(c.CardNumber)
}

// Clone returns a copy that shares no slices with c.
func (c *Card) Clone() *Card {
	if c == nil {
		return nil
	}
	cp := *c
	if c.RecentTransactions != nil {
		cp.RecentTransactions = make([]*Transaction, len(c.RecentTransactions))
		for i, t := range c.RecentTransactions {
			tc := *t
			cp.RecentTransactions[i] = &tc
		}
	}
	return &cp
}

// CardCreateRequest is the input for creating a card.
type CardCreateRequest struct {
	Name string `json:"name"`
}

func (r CardCreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrCardNameRequired
	}
	return nil
}

// CardUpdate is a partial card. Nil fields are left untouched when merged.
type CardUpdate struct {
	Name           *string   `json:"name,omitempty"`
	Balance        *int64    `json:"balance,omitempty"`
	IsFrozen       *bool     `json:"isFrozen,omitempty"`
	ShowCardNumber *bool     `json:"showCardNumber,omitempty"`
	ExpirationDate *string   `json:"expirationDate,omitempty"`
	CardType       *CardType `json:"cardType,omitempty"`
}

func (u CardUpdate) IsEmpty() bool {
	return u.Name == nil && u.Balance == nil && u.IsFrozen == nil &&
		u.ShowCardNumber == nil && u.ExpirationDate == nil && u.CardType == nil
}

// Apply shallow-merges the set fields of u into c.
func (u CardUpdate) Apply(c *Card) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Balance != nil {
		c.Balance = *u.Balance
	}
	if u.IsFrozen != nil {
		c.IsFrozen = *u.IsFrozen
	}
	if u.ShowCardNumber != nil {
		c.ShowCardNumber = *u.ShowCardNumber
	}
	if u.ExpirationDate != nil {
		c.ExpirationDate = *u.ExpirationDate
	}
	if u.CardType != nil {
		c.CardType = *u.CardType
	}
}

// FormatCardNumber regroups the digits of n in blocks of four.
func FormatCardNumber(n string) string {
	digits := strings.ReplaceAll(n, " ", "")
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MaskCardNumber hides everything but the last four digits.
func MaskCardNumber(n string) string {
	digits := strings.ReplaceAll(n, " ", "")
	last := digits
	if len(digits) > 4 {
		last = digits[len(digits)-4:]
	}
	return "**** **** **** " + last
}
