package generator

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/card-gateway/internal/model"
	"github.com/shopspring/decimal"
)

const (
	creditProbability = 0.25
	historyDays       = 60
	minBalance        = 10000
	balanceSpan       = 50000
)

// process-wide id counters
var (
	cardCounter        uint64
	transactionCounter uint64
)

type Generator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	now      func() time.Time
	profiles map[string]Profile
}

type Option func(*Generator)

func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithProfiles replaces the curated profile table.
func WithProfiles(profiles ...Profile) Option {
	return func(g *Generator) {
		g.profiles = make(map[string]Profile, len(profiles))
		for _, p := range profiles {
			g.profiles[p.ID] = p
		}
	}
}

// New returns a Generator that is safe for concurrent use.
func New(opts ...Option) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	WithProfiles(DefaultProfiles()...)(g)
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Generator) intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

func (g *Generator) float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

// Now is the generator clock.
func (g *Generator) Now() time.Time {
	return g.now()
}

// CardNumber returns 16 digits starting with 4, grouped in blocks of four.
// No Luhn check.
func (g *Generator) CardNumber() string {
	var b strings.Builder
	b.WriteByte('4')
	for i := 1; i < 16; i++ {
		b.WriteByte(byte('0' + g.intn(10)))
	}
	return model.FormatCardNumber(b.String())
}

// ExpirationDate returns MM/YY, 2 to 6 years ahead of the current year.
func (g *Generator) ExpirationDate() string {
	year := g.now().Year() + g.intn(5) + 2
	month := g.intn(12) + 1
	return fmt.Sprintf("%02d/%02d", month, year%100)
}

func (g *Generator) CVV() string {
	return strconv.Itoa(g.intn(900) + 100)
}

func (g *Generator) cardID() string {
	n := atomic.AddUint64(&cardCounter, 1)
	return fmt.Sprintf("card_%d_%d", g.now().UnixMilli(), n)
}

func (g *Generator) transactionID() string {
	n := atomic.AddUint64(&transactionCounter, 1)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("txn_%d_%d_%s", g.now().UnixMilli(), n, suffix)
}

// NewCard builds a fresh debit card. RecentTransactions is left empty; the
// read path fills it in.
func (g *Generator) NewCard(name string) *model.Card {
	return &model.Card{
		ID:                 g.cardID(),
		Name:               name,
		CardNumber:         g.CardNumber(),
		ExpirationDate:     g.ExpirationDate(),
		CVV:                g.CVV(),
		Balance:            int64(g.intn(balanceSpan) + minBalance),
		IsFrozen:           false,
		CardType:           model.CardTypeDebit,
		CreatedAt:          g.now(),
		ShowCardNumber:     false,
		RecentTransactions: []*model.Transaction{},
	}
}

// Transaction generates one synthetic transaction for cardID.
func (g *Generator) Transaction(cardID string) *model.Transaction {
	isCredit := g.float64() < creditProbability
	merchant := merchantNames[g.intn(len(merchantNames))]
	category := categories[g.intn(len(categories))]
	icon := iconTypes[g.intn(len(iconTypes))]

	r := rangeFor(category)
	magnitude := int64(g.intn(r.span) + r.min)

	daysAgo := g.intn(historyDays)
	weighted := int(math.Floor(math.Pow(g.float64(), 2) * float64(daysAgo)))

	now := g.now()
	d := now.AddDate(0, 0, -weighted)
	date := time.Date(d.Year(), d.Month(), d.Day(), g.intn(24), g.intn(60), d.Second(), d.Nanosecond(), d.Location())

	t := &model.Transaction{
		ID:           g.transactionID(),
		CardID:       cardID,
		MerchantName: merchant,
		Category:     category,
		Date:         date,
		IconType:     icon,
	}
	if isCredit {
		t.Type = model.TransactionTypeCredit
		t.Amount = decimal.NewFromInt(magnitude)
		t.Description = "Refund from " + merchant
	} else {
		t.Type = model.TransactionTypeDebit
		t.Amount = decimal.NewFromInt(-magnitude)
		t.Description = "Purchase at " + merchant
	}
	return t
}

// Transactions generates count transactions for cardID, newest first.
func (g *Generator) Transactions(cardID string, count int) []*model.Transaction {
	out := make([]*model.Transaction, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, g.Transaction(cardID))
	}
	SortByDateDesc(out)
	return out
}

// ProfileTransactions returns the curated transactions of profileID for
// cardID, or nil when the profile is unknown.
func (g *Generator) ProfileTransactions(cardID, profileID string) []*model.Transaction {
	p, ok := g.profiles[profileID]
	if !ok {
		return nil
	}
	now := g.now()
	out := make([]*model.Transaction, 0, len(p.Entries))
	for _, e := range p.Entries {
		out = append(out, e.toTransaction(g.transactionID(), cardID, now))
	}
	return out
}

// SortByDateDesc orders transactions newest first. Equal dates keep their
// relative order.
func SortByDateDesc(ts []*model.Transaction) {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].Date.After(ts[j].Date)
	})
}
