package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/nimasrn/card-gateway/internal/model"
	"github.com/nimasrn/card-gateway/internal/services"
	"github.com/nimasrn/card-gateway/pkg/logger"
	"github.com/nimasrn/card-gateway/pkg/worker"
)

type CardAPI interface {
	ListCards(ctx context.Context) (*services.Response[[]*model.Card], error)
	AddCard(ctx context.Context, req model.CardCreateRequest) (*services.Response[*model.Card], error)
	ToggleCardFreeze(ctx context.Context, id string) (*services.Response[*model.Card], error)
	ToggleCardNumberVisibility(ctx context.Context, id string) (*services.Response[*model.Card], error)
	UpdateCard(ctx context.Context, id string, upd model.CardUpdate) (*services.Response[*model.Card], error)
	DeleteCard(ctx context.Context, id string) (*services.Response[any], error)
}

type TransactionAPI interface {
	ListTransactions(ctx context.Context) (*services.Response[[]*model.Transaction], error)
	ListTransactionsByCard(ctx context.Context, cardID string) (*services.Response[[]*model.Transaction], error)
}

type CardsState struct {
	Cards          []*model.Card
	Loading        bool
	Error          string
	SelectedCardID string
	AddingCard     bool
	// UpdatingCardID marks the card with a toggle, update or delete in flight.
	UpdatingCardID string
}

type TransactionsState struct {
	Transactions []*model.Transaction
	Loading      bool
	Error        string
}

// Store is the process-wide application state. Every mutation goes through an
// action that calls the API and applies the outcome; nothing is written
// optimistically.
type Store struct {
	cardAPI CardAPI
	txnAPI  TransactionAPI
	pool    *worker.WorkerManager

	mu    sync.RWMutex
	cards CardsState
	txns  TransactionsState

	lmu       sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

// NewStore creates an empty store. pool runs dispatched actions; when nil
// each dispatched action gets its own goroutine.
func NewStore(cardAPI CardAPI, txnAPI TransactionAPI, pool *worker.WorkerManager) *Store {
	return &Store{
		cardAPI: cardAPI,
		txnAPI:  txnAPI,
		pool:    pool,
		cards: CardsState{
			Cards: []*model.Card{},
		},
		txns: TransactionsState{
			Transactions: []*model.Transaction{},
		},
		listeners: make(map[int]Listener),
	}
}

/* --------------------------------- reads --------------------------------- */

// Cards returns a snapshot that shares nothing with the store.
func (s *Store) Cards() CardsState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := s.cards
	cp.Cards = cloneCards(s.cards.Cards)
	return cp
}

// Transactions returns a snapshot that shares nothing with the store.
func (s *Store) Transactions() TransactionsState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := s.txns
	cp.Transactions = cloneTransactions(s.txns.Transactions)
	return cp
}

// Subscribe registers l for every Event. The returned func removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Store) emit(e Event) {
	s.lmu.RLock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.lmu.RUnlock()

	for _, l := range ls {
		l(e)
	}
}

func (s *Store) update(fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()
}

/* ------------------------------- reducers -------------------------------- */

func (s *Store) ClearError() {
	s.update(func() { s.cards.Error = "" })
}

func (s *Store) ClearTransactionsError() {
	s.update(func() { s.txns.Error = "" })
}

// SetSelectedCard selects id; an empty id clears the selection.
func (s *Store) SetSelectedCard(id string) {
	s.update(func() { s.cards.SelectedCardID = id })
}

// InitializeCards replaces the card list, newest first.
func (s *Store) InitializeCards(cards []*model.Card) {
	cards = cloneCards(cards)
	sortNewestFirst(cards)
	s.update(func() { s.cards.Cards = cards })
}

func (s *Store) ClearTransactions() {
	s.update(func() { s.txns.Transactions = []*model.Transaction{} })
}

/* ------------------------------- dispatch -------------------------------- */

// ErrActionPanicked wraps a panic raised while an action ran.
var ErrActionPanicked = errors.New("action panicked")

// Dispatch runs action on the store's worker pool and delivers its Result on
// the returned channel, which receives exactly one value. A panicking action
// yields ErrActionPanicked; an action dropped because the pool shut down
// before it ran yields worker.ErrPoolClosed.
func Dispatch[T any](ctx context.Context, s *Store, action func(ctx context.Context) Result[T]) <-chan Result[T] {
	out := make(chan Result[T], 1)

	if s.pool == nil {
		go func() { out <- safeRun(ctx, action) }()
		return out
	}

	// claimed is won either by the job starting or by the pool shutting down
	// first, so exactly one of them sends.
	var claimed atomic.Bool
	finished := make(chan struct{})
	job := func(context.Context) {
		if !claimed.CompareAndSwap(false, true) {
			return
		}
		defer close(finished)
		out <- safeRun(ctx, action)
	}

	if err := s.pool.Enqueue(job); err != nil {
		logger.Warn("[state] dispatch rejected", "error", err)
		out <- Err[T](err)
		return out
	}

	go func() {
		select {
		case <-finished:
		case <-s.pool.Done():
			if claimed.CompareAndSwap(false, true) {
				logger.Warn("[state] dispatched action dropped", "error", worker.ErrPoolClosed)
				out <- Err[T](worker.ErrPoolClosed)
			}
		}
	}()
	return out
}

func safeRun[T any](ctx context.Context, action func(ctx context.Context) Result[T]) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[state] action panicked", "panic", r)
			res = Err[T](fmt.Errorf("%w: %v", ErrActionPanicked, r))
		}
	}()
	return action(ctx)
}

/* -------------------------------- helpers -------------------------------- */

func sortNewestFirst(cards []*model.Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].CreatedAt.After(cards[j].CreatedAt)
	})
}

func cloneCards(in []*model.Card) []*model.Card {
	out := make([]*model.Card, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

func cloneTransactions(in []*model.Transaction) []*model.Transaction {
	out := make([]*model.Transaction, len(in))
	for i, t := range in {
		tc := *t
		out[i] = &tc
	}
	return out
}

func replaceCard(cards []*model.Card, card *model.Card) {
	for i, c := range cards {
		if c.ID == card.ID {
			cards[i] = card
			return
		}
	}
}

func removeCard(cards []*model.Card, id string) []*model.Card {
	out := make([]*model.Card, 0, len(cards))
	for _, c := range cards {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}
