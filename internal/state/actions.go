package state

import (
	"context"
	"fmt"

	"github.com/nimasrn/card-gateway/internal/model"
	"github.com/nimasrn/card-gateway/pkg/logger"
)

type phases[T any] struct {
	pending   func()
	fulfilled func(v T)
	rejected  func(msg string)
}

// run drives one action through pending, then fulfilled or rejected. State is
// updated under the lock; listeners are called after it is released.
func run[T any](ctx context.Context, s *Store, action Action, cardID, fallback string, p phases[T], call func(ctx context.Context) (T, error)) Result[T] {
	s.update(p.pending)
	s.emit(Event{Action: action, Phase: PhasePending, CardID: cardID})

	v, err := safeCall(ctx, call)
	if err != nil {
		msg := errorMessage(err, fallback)
		s.update(func() { p.rejected(msg) })
		s.emit(Event{Action: action, Phase: PhaseRejected, CardID: cardID, Err: msg})
		return Err[T](err)
	}

	s.update(func() { p.fulfilled(v) })
	s.emit(Event{Action: action, Phase: PhaseFulfilled, CardID: cardID})
	return Ok(v)
}

// safeCall turns a panic in call into an error so the action still ends in
// the rejected phase.
func safeCall[T any](ctx context.Context, call func(ctx context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[state] api call panicked", "panic", r)
			err = fmt.Errorf("%w: %v", ErrActionPanicked, r)
		}
	}()
	return call(ctx)
}

// cardUpdatePhases is shared by toggle and update actions: the card in flight
// is marked, then replaced by id on success.
func (s *Store) cardUpdatePhases(id string) phases[*model.Card] {
	return phases[*model.Card]{
		pending: func() {
			s.cards.UpdatingCardID = id
			s.cards.Error = ""
		},
		fulfilled: func(c *model.Card) {
			s.cards.UpdatingCardID = ""
			replaceCard(s.cards.Cards, c)
			s.cards.Error = ""
		},
		rejected: func(msg string) {
			s.cards.UpdatingCardID = ""
			s.cards.Error = msg
		},
	}
}

/* --------------------------------- cards --------------------------------- */

// FetchCards loads the card list. On failure the previous list is kept.
func (s *Store) FetchCards(ctx context.Context) Result[[]*model.Card] {
	return run(ctx, s, ActionFetchCards, "", "", phases[[]*model.Card]{
		pending: func() {
			s.cards.Loading = true
			s.cards.Error = ""
		},
		fulfilled: func(cards []*model.Card) {
			s.cards.Loading = false
			cp := cloneCards(cards)
			sortNewestFirst(cp)
			s.cards.Cards = cp
			s.cards.Error = ""
		},
		rejected: func(msg string) {
			s.cards.Loading = false
			s.cards.Error = msg
		},
	}, func(ctx context.Context) ([]*model.Card, error) {
		resp, err := s.cardAPI.ListCards(ctx)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	})
}

// AddCard creates a card and puts it at the head of the list.
func (s *Store) AddCard(ctx context.Context, req model.CardCreateRequest) Result[*model.Card] {
	return run(ctx, s, ActionAddCard, "", "", phases[*model.Card]{
		pending: func() {
			s.cards.AddingCard = true
			s.cards.Error = ""
		},
		fulfilled: func(c *model.Card) {
			s.cards.AddingCard = false
			s.cards.Cards = append([]*model.Card{c.Clone()}, s.cards.Cards...)
			s.cards.Error = ""
		},
		rejected: func(msg string) {
			s.cards.AddingCard = false
			s.cards.Error = msg
		},
	}, func(ctx context.Context) (*model.Card, error) {
		resp, err := s.cardAPI.AddCard(ctx, req)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	})
}

func (s *Store) ToggleCardFreeze(ctx context.Context, id string) Result[*model.Card] {
	return run(ctx, s, ActionToggleCardFreeze, id, "", s.cardUpdatePhases(id),
		func(ctx context.Context) (*model.Card, error) {
			resp, err := s.cardAPI.ToggleCardFreeze(ctx, id)
			if err != nil {
				return nil, err
			}
			return resp.Data.Clone(), nil
		})
}

func (s *Store) ToggleCardNumberVisibility(ctx context.Context, id string) Result[*model.Card] {
	return run(ctx, s, ActionToggleCardNumberVisibility, id, "", s.cardUpdatePhases(id),
		func(ctx context.Context) (*model.Card, error) {
			resp, err := s.cardAPI.ToggleCardNumberVisibility(ctx, id)
			if err != nil {
				return nil, err
			}
			return resp.Data.Clone(), nil
		})
}

func (s *Store) UpdateCard(ctx context.Context, id string, upd model.CardUpdate) Result[*model.Card] {
	return run(ctx, s, ActionUpdateCard, id, "", s.cardUpdatePhases(id),
		func(ctx context.Context) (*model.Card, error) {
			resp, err := s.cardAPI.UpdateCard(ctx, id, upd)
			if err != nil {
				return nil, err
			}
			return resp.Data.Clone(), nil
		})
}

// DeleteCard removes the card from the list once the API confirms. The
// result value is the deleted id.
func (s *Store) DeleteCard(ctx context.Context, id string) Result[string] {
	return run(ctx, s, ActionDeleteCard, id, "", phases[string]{
		pending: func() {
			s.cards.UpdatingCardID = id
			s.cards.Error = ""
		},
		fulfilled: func(deleted string) {
			s.cards.UpdatingCardID = ""
			s.cards.Cards = removeCard(s.cards.Cards, deleted)
			s.cards.Error = ""
		},
		rejected: func(msg string) {
			s.cards.UpdatingCardID = ""
			s.cards.Error = msg
		},
	}, func(ctx context.Context) (string, error) {
		if _, err := s.cardAPI.DeleteCard(ctx, id); err != nil {
			return "", err
		}
		return id, nil
	})
}

/* ------------------------------ transactions ----------------------------- */

const (
	fetchTransactionsFallback     = "Failed to fetch transactions"
	fetchCardTransactionsFallback = "Failed to fetch card transactions"
)

func (s *Store) FetchTransactions(ctx context.Context) Result[[]*model.Transaction] {
	return run(ctx, s, ActionFetchTransactions, "", fetchTransactionsFallback, phases[[]*model.Transaction]{
		pending: func() {
			s.txns.Loading = true
			s.txns.Error = ""
		},
		fulfilled: func(txns []*model.Transaction) {
			s.txns.Loading = false
			s.txns.Transactions = cloneTransactions(txns)
		},
		rejected: func(msg string) {
			s.txns.Loading = false
			s.txns.Error = msg
		},
	}, func(ctx context.Context) ([]*model.Transaction, error) {
		resp, err := s.txnAPI.ListTransactions(ctx)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	})
}

// FetchTransactionsByCard replaces the held transactions of cardID with the
// fetched ones. An empty result leaves the held list unchanged.
func (s *Store) FetchTransactionsByCard(ctx context.Context, cardID string) Result[[]*model.Transaction] {
	return run(ctx, s, ActionFetchTransactionsByCard, cardID, fetchCardTransactionsFallback, phases[[]*model.Transaction]{
		pending: func() {
			s.txns.Loading = true
			s.txns.Error = ""
		},
		fulfilled: func(txns []*model.Transaction) {
			s.txns.Loading = false
			if len(txns) == 0 {
				return
			}
			kept := make([]*model.Transaction, 0, len(s.txns.Transactions)+len(txns))
			for _, t := range s.txns.Transactions {
				if t.CardID != cardID {
					kept = append(kept, t)
				}
			}
			s.txns.Transactions = append(kept, cloneTransactions(txns)...)
		},
		rejected: func(msg string) {
			s.txns.Loading = false
			s.txns.Error = msg
		},
	}, func(ctx context.Context) ([]*model.Transaction, error) {
		resp, err := s.txnAPI.ListTransactionsByCard(ctx, cardID)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	})
}
