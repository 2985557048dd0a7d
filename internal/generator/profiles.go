package generator

import (
	"time"

	"github.com/nimasrn/card-gateway/internal/model"
	"github.com/shopspring/decimal"
)

const (
	ProfileTech      = "tech"
	ProfileTravel    = "travel"
	ProfileFamily    = "family"
	ProfileLifestyle = "lifestyle"
)

// ProfileEntry is one curated transaction, dated DaysAgo before generation time.
type ProfileEntry struct {
	Merchant string
	Amount   string
	Category string
	DaysAgo  int
	Icon     model.IconType
}

// Profile is a named set of curated transactions used to make demo data
// look plausible.
type Profile struct {
	ID      string
	Entries []ProfileEntry
}

// SeedCard describes one card created by the default seed.
type SeedCard struct {
	Name      string
	ProfileID string
	Count     int
}

// DefaultSeedPlan is the set of cards provisioned on first run.
var DefaultSeedPlan = []SeedCard{
	{Name: "Mark Henry", ProfileID: ProfileTech, Count: 25},
	{Name: "Sarah Johnson", ProfileID: ProfileTravel, Count: 30},
	{Name: "Michael Brown", ProfileID: ProfileFamily, Count: 20},
	{Name: "Emily Davis", ProfileID: ProfileLifestyle, Count: 35},
}

func DefaultProfiles() []Profile {
	return []Profile{
		{ID: ProfileTech, Entries: []ProfileEntry{
			{"Apple Store", "-1299", CategoryTechnology, 5, model.IconShopping},
			{"Steam", "-59.99", CategoryEntertainment, 3, model.IconCard},
			{"Netflix", "-15.99", CategorySubscriptions, 1, model.IconCard},
		}},
		{ID: ProfileTravel, Entries: []ProfileEntry{
			{"Southwest Airlines", "-450", CategoryTravel, 7, model.IconPlane},
			{"Hilton Hotels", "-189", CategoryTravel, 4, model.IconPlane},
			{"Airbnb", "25", CategoryTravel, 2, model.IconPlane},
		}},
		{ID: ProfileFamily, Entries: []ProfileEntry{
			{"Costco", "-156.78", CategoryGroceries, 6, model.IconShopping},
			{"Target", "-89.45", CategoryShopping, 3, model.IconShopping},
			{"Shell", "-45.2", CategoryGasFuel, 1, model.IconCard},
		}},
		{ID: ProfileLifestyle, Entries: []ProfileEntry{
			{"Zara", "-125.5", CategoryShopping, 8, model.IconShopping},
			{"Starbucks", "-6.75", CategoryFoodDining, 2, model.IconCard},
			{"Hair Salon", "-85", CategoryPersonalCare, 5, model.IconCard},
		}},
	}
}

func (e ProfileEntry) toTransaction(id, cardID string, now time.Time) *model.Transaction {
	amount := decimal.RequireFromString(e.Amount)
	t := &model.Transaction{
		ID:           id,
		CardID:       cardID,
		MerchantName: e.Merchant,
		Amount:       amount,
		Category:     e.Category,
		Date:         now.Add(-time.Duration(e.DaysAgo) * 24 * time.Hour),
		IconType:     e.Icon,
	}
	if amount.IsPositive() {
		t.Type = model.TransactionTypeCredit
		t.Description = "Refund from " + e.Merchant
	} else {
		t.Type = model.TransactionTypeDebit
		t.Description = "Purchase at " + e.Merchant
	}
	return t
}
