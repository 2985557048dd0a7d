package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/nimasrn/card-gateway/internal/generator"
	"github.com/nimasrn/card-gateway/internal/model"
	"github.com/nimasrn/card-gateway/internal/storage"
	"github.com/nimasrn/card-gateway/pkg/logger"
)

const (
	CardsKey        = "cards"
	TransactionsKey = "transactions"

	// NewCardTransactionCount is how many transactions a card added at
	// runtime starts with.
	NewCardTransactionCount = 20
)

// CardRepository persists cards and transactions as two whole collections in
// a BlobStore. Every write replaces a full collection; joins happen in memory
// on read.
//
// Read-modify-write sequences are serialised by mu, so two writers in the
// same process never lose each other's update, and reads never observe a
// write half done. Writers in other processes sharing the backend are still
// last-writer-wins.
type CardRepository struct {
	store    storage.BlobStore
	gen      *generator.Generator
	seedPlan []generator.SeedCard
	mu       sync.RWMutex
}

func NewCardRepository(store storage.BlobStore, gen *generator.Generator) *CardRepository {
	return &CardRepository{
		store:    store,
		gen:      gen,
		seedPlan: generator.DefaultSeedPlan,
	}
}

// WithSeedPlan replaces the cards created by InitializeDefaultCards.
func (r *CardRepository) WithSeedPlan(plan []generator.SeedCard) *CardRepository {
	r.seedPlan = plan
	return r
}

/* ------------------------------ collections ------------------------------ */

// ErrNullEntry is returned when a stored collection holds a JSON null
// element.
var ErrNullEntry = errors.New("null entry")

func readCollection[T any](ctx context.Context, store storage.BlobStore, key string) ([]*T, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []*T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	var out []*T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	for i, item := range out {
		if item == nil {
			return nil, fmt.Errorf("decode %s: index %d: %w", key, i, ErrNullEntry)
		}
	}
	if out == nil {
		out = []*T{}
	}
	return out, nil
}

func encodeCollection[T any](key string, items []*T) ([]byte, error) {
	if items == nil {
		items = []*T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	return raw, nil
}

func writeCollection[T any](ctx context.Context, store storage.BlobStore, key string, items []*T) error {
	raw, err := encodeCollection(key, items)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (r *CardRepository) readCards(ctx context.Context) ([]*cardEntity, error) {
	return readCollection[cardEntity](ctx, r.store, CardsKey)
}

func (r *CardRepository) writeCards(ctx context.Context, cards []*cardEntity) error {
	return writeCollection(ctx, r.store, CardsKey, cards)
}

func (r *CardRepository) readTransactions(ctx context.Context) ([]*transactionEntity, error) {
	return readCollection[transactionEntity](ctx, r.store, TransactionsKey)
}

func (r *CardRepository) writeTransactions(ctx context.Context, txns []*transactionEntity) error {
	return writeCollection(ctx, r.store, TransactionsKey, txns)
}

// writeAll replaces both collections in one atomic store write.
func (r *CardRepository) writeAll(ctx context.Context, cards []*cardEntity, txns []*transactionEntity) error {
	rawCards, err := encodeCollection(CardsKey, cards)
	if err != nil {
		return err
	}
	rawTxns, err := encodeCollection(TransactionsKey, txns)
	if err != nil {
		return err
	}
	if err := r.store.PutAll(ctx, map[string][]byte{CardsKey: rawCards, TransactionsKey: rawTxns}); err != nil {
		return fmt.Errorf("write collections: %w", err)
	}
	return nil
}

/* ------------------------------ projection ------------------------------- */

// recentTransactions returns the newest RecentTransactionsLimit transactions
// of cardID. Transactions with equal dates keep their storage order.
func recentTransactions(cardID string, txns []*transactionEntity) []*model.Transaction {
	var own []*model.Transaction
	for _, t := range txns {
		if t.CardID == cardID {
			own = append(own, toTransactionModel(t))
		}
	}
	generator.SortByDateDesc(own)
	if len(own) > model.RecentTransactionsLimit {
		own = own[:model.RecentTransactionsLimit]
	}
	if own == nil {
		own = []*model.Transaction{}
	}
	return own
}

func sortCardsNewestFirst(cards []*model.Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].CreatedAt.After(cards[j].CreatedAt)
	})
}

func (r *CardRepository) withProjection(ctx context.Context, cards []*model.Card) ([]*model.Card, error) {
	txns, err := r.readTransactions(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cards {
		c.RecentTransactions = recentTransactions(c.ID, txns)
	}
	sortCardsNewestFirst(cards)
	return cards, nil
}

/* -------------------------------- reads ---------------------------------- */

// ListCards returns every card newest first, without the projection.
func (r *CardRepository) ListCards(ctx context.Context) ([]*model.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entities, err := r.readCards(ctx)
	if err != nil {
		return nil, err
	}
	cards := toCardModels(entities)
	sortCardsNewestFirst(cards)
	return cards, nil
}

// ListCardsWithRecentTransactions returns every card newest first with its
// recent-transactions projection attached.
func (r *CardRepository) ListCardsWithRecentTransactions(ctx context.Context) ([]*model.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entities, err := r.readCards(ctx)
	if err != nil {
		return nil, err
	}
	return r.withProjection(ctx, toCardModels(entities))
}

// GetCard returns the card with its projection, or nil when id is unknown.
func (r *CardRepository) GetCard(ctx context.Context, id string) (*model.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entities, err := r.readCards(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if e.ID == id {
			cards, err := r.withProjection(ctx, []*model.Card{toCardModel(e)})
			if err != nil {
				return nil, err
			}
			return cards[0], nil
		}
	}
	return nil, nil
}

// ListTransactions returns every stored transaction in storage order.
func (r *CardRepository) ListTransactions(ctx context.Context) ([]*model.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entities, err := r.readTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return toTransactionModels(entities), nil
}

// ListTransactionsByCard returns all transactions of cardID in storage order.
func (r *CardRepository) ListTransactionsByCard(ctx context.Context, cardID string) ([]*model.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entities, err := r.readTransactions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Transaction, 0)
	for _, e := range entities {
		if e.CardID == cardID {
			out = append(out, toTransactionModel(e))
		}
	}
	return out, nil
}

/* -------------------------------- writes --------------------------------- */

// AddCard creates a card named req.Name together with its generated
// transaction history.
//
// The card collection is written before the transaction collection and
// nothing is rolled back: if the second write fails the card stays, with no
// transactions.
func (r *CardRepository) AddCard(ctx context.Context, req model.CardCreateRequest) (*model.Card, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cards, err := r.readCards(ctx)
	if err != nil {
		return nil, err
	}
	card := r.gen.NewCard(req.Name)
	if err := r.writeCards(ctx, append(cards, toCardEntity(card))); err != nil {
		return nil, err
	}

	txns, err := r.readTransactions(ctx)
	if err != nil {
		logger.Error("card stored without transactions", "card_id", card.ID, "error", err)
		return nil, err
	}
	generated := r.gen.Transactions(card.ID, NewCardTransactionCount)
	if err := r.writeTransactions(ctx, append(txns, toTransactionEntities(generated)...)); err != nil {
		logger.Error("card stored without transactions", "card_id", card.ID, "error", err)
		return nil, err
	}

	card.RecentTransactions = recentTransactions(card.ID, toTransactionEntities(generated))
	logger.Info("card added", "card_id", card.ID, "transactions", len(generated))
	return card, nil
}

// UpdateCard shallow-merges upd into the stored card. It returns a nil card
// when id is unknown.
func (r *CardRepository) UpdateCard(ctx context.Context, id string, upd model.CardUpdate) (*model.Card, error) {
	return r.UpdateCardWith(ctx, id, func(*model.Card) model.CardUpdate { return upd })
}

// UpdateCardWith computes the update from the current stored card and
// applies it atomically with respect to other writers of this repository.
// It returns a nil card when id is unknown; fn is not called in that case.
func (r *CardRepository) UpdateCardWith(ctx context.Context, id string, fn func(current *model.Card) model.CardUpdate) (*model.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cards, err := r.readCards(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, c := range cards {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, nil
	}

	updated := toCardModel(cards[idx])
	fn(updated.Clone()).Apply(updated)
	cards[idx] = toCardEntity(updated)

	if err := r.writeCards(ctx, cards); err != nil {
		return nil, err
	}

	txns, err := r.readTransactions(ctx)
	if err != nil {
		return nil, err
	}
	updated.RecentTransactions = recentTransactions(id, txns)
	return updated, nil
}

// DeleteCard removes the card and every transaction that references it.
// It reports false, and writes nothing, when id is unknown.
func (r *CardRepository) DeleteCard(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cards, err := r.readCards(ctx)
	if err != nil {
		return false, err
	}
	kept := make([]*cardEntity, 0, len(cards))
	for _, c := range cards {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(cards) {
		return false, nil
	}

	txns, err := r.readTransactions(ctx)
	if err != nil {
		return false, err
	}
	keptTxns := make([]*transactionEntity, 0, len(txns))
	for _, t := range txns {
		if t.CardID != id {
			keptTxns = append(keptTxns, t)
		}
	}
	if err := r.writeAll(ctx, kept, keptTxns); err != nil {
		return false, err
	}

	logger.Info("card deleted", "card_id", id, "transactions_removed", len(txns)-len(keptTxns))
	return true, nil
}

// InitializeDefaultCards seeds the demo cards when the card collection is
// empty. When cards already exist it only reads.
func (r *CardRepository) InitializeDefaultCards(ctx context.Context) ([]*model.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.readCards(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return r.withProjection(ctx, toCardModels(existing))
	}

	cards := make([]*cardEntity, 0, len(r.seedPlan))
	var txns []*model.Transaction
	for _, s := range r.seedPlan {
		card := r.gen.NewCard(s.Name)
		cards = append(cards, toCardEntity(card))
		txns = append(txns, r.gen.Transactions(card.ID, s.Count)...)
		txns = append(txns, r.gen.ProfileTransactions(card.ID, s.ProfileID)...)
	}

	if err := r.writeAll(ctx, cards, toTransactionEntities(txns)); err != nil {
		return nil, err
	}

	logger.Info("default cards seeded", "cards", len(cards), "transactions", len(txns))
	return r.withProjection(ctx, toCardModels(cards))
}

// ClearAllData removes both collections.
func (r *CardRepository) ClearAllData(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Delete(ctx, CardsKey, TransactionsKey); err != nil {
		return fmt.Errorf("clear collections: %w", err)
	}
	logger.Warn("all card data cleared")
	return nil
}
