package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/nimasrn/card-gateway/internal/model"
	"github.com/nimasrn/card-gateway/pkg/logger"
)

type CardRepository interface {
	ListCardsWithRecentTransactions(ctx context.Context) ([]*model.Card, error)
	InitializeDefaultCards(ctx context.Context) ([]*model.Card, error)
	AddCard(ctx context.Context, req model.CardCreateRequest) (*model.Card, error)
	UpdateCard(ctx context.Context, id string, upd model.CardUpdate) (*model.Card, error)
	UpdateCardWith(ctx context.Context, id string, fn func(current *model.Card) model.CardUpdate) (*model.Card, error)
	DeleteCard(ctx context.Context, id string) (bool, error)
	ClearAllData(ctx context.Context) error
}

// CardService is the card half of the simulated API. Every call waits for
// the endpoint's latency first, then touches storage.
type CardService struct {
	repo        CardRepository
	latency     Latency
	seedOnEmpty bool
}

func NewCardService(repo CardRepository, latency Latency, seedOnEmpty bool) *CardService {
	return &CardService{
		repo:        repo,
		latency:     latency,
		seedOnEmpty: seedOnEmpty,
	}
}

// fail logs unshaped errors and converts them to the endpoint's 500.
func fail(e Endpoint, err error, fallback string) error {
	apiErr := toAPIError(err, fallback)
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Error("api call failed", "endpoint", e, "error", err)
	}
	return apiErr
}

// EnsureSeeded provisions the demo cards when storage holds none. It is a
// no-op read otherwise and carries no artificial latency.
func (s *CardService) EnsureSeeded(ctx context.Context) ([]*model.Card, error) {
	cards, err := s.repo.InitializeDefaultCards(ctx)
	if err != nil {
		logger.Error("seeding default cards failed", "error", err)
		return nil, newAPIError(http.StatusInternalServerError, MsgSeedFailed)
	}
	return cards, nil
}

// ListCards returns every card newest first with its recent transactions.
// An empty store is seeded on the way when seedOnEmpty is set.
func (s *CardService) ListCards(ctx context.Context) (resp *Response[[]*model.Card], err error) {
	start := begin(EndpointListCards)
	defer func() { observe(EndpointListCards, start, err) }()

	if err := s.latency.wait(ctx, EndpointListCards); err != nil {
		return nil, fail(EndpointListCards, err, MsgFetchCardsFailed)
	}

	cards, err := s.repo.ListCardsWithRecentTransactions(ctx)
	if err != nil {
		return nil, fail(EndpointListCards, err, MsgFetchCardsFailed)
	}
	if len(cards) == 0 && s.seedOnEmpty {
		cards, err = s.repo.InitializeDefaultCards(ctx)
		if err != nil {
			return nil, fail(EndpointListCards, err, MsgFetchCardsFailed)
		}
	}
	return ok(cards, MsgCardsFetched), nil
}

func (s *CardService) AddCard(ctx context.Context, req model.CardCreateRequest) (resp *Response[*model.Card], err error) {
	start := begin(EndpointAddCard)
	defer func() { observe(EndpointAddCard, start, err) }()

	if err := s.latency.wait(ctx, EndpointAddCard); err != nil {
		return nil, fail(EndpointAddCard, err, MsgAddCardFailed)
	}

	if err := req.Validate(); err != nil {
		return nil, newAPIError(http.StatusBadRequest, MsgCardNameRequired)
	}
	card, err := s.repo.AddCard(ctx, req)
	if err != nil {
		if errors.Is(err, model.ErrCardNameRequired) {
			return nil, newAPIError(http.StatusBadRequest, MsgCardNameRequired)
		}
		return nil, fail(EndpointAddCard, err, MsgAddCardFailed)
	}
	return ok(card, MsgCardAdded), nil
}

// ToggleCardFreeze flips isFrozen on the stored card.
func (s *CardService) ToggleCardFreeze(ctx context.Context, id string) (resp *Response[*model.Card], err error) {
	start := begin(EndpointToggleFreeze)
	defer func() { observe(EndpointToggleFreeze, start, err) }()

	if err := s.latency.wait(ctx, EndpointToggleFreeze); err != nil {
		return nil, fail(EndpointToggleFreeze, err, MsgToggleFreezeFailed)
	}

	card, err := s.repo.UpdateCardWith(ctx, id, func(c *model.Card) model.CardUpdate {
		v := !c.IsFrozen
		return model.CardUpdate{IsFrozen: &v}
	})
	if err != nil {
		return nil, fail(EndpointToggleFreeze, err, MsgToggleFreezeFailed)
	}
	if card == nil {
		return nil, newAPIError(http.StatusNotFound, MsgCardNotFound)
	}

	msg := MsgCardUnfrozen
	if card.IsFrozen {
		msg = MsgCardFrozen
	}
	return ok(card, msg), nil
}

// ToggleCardNumberVisibility flips showCardNumber on the stored card.
func (s *CardService) ToggleCardNumberVisibility(ctx context.Context, id string) (resp *Response[*model.Card], err error) {
	start := begin(EndpointToggleVisibility)
	defer func() { observe(EndpointToggleVisibility, start, err) }()

	if err := s.latency.wait(ctx, EndpointToggleVisibility); err != nil {
		return nil, fail(EndpointToggleVisibility, err, MsgToggleVisibilityFailed)
	}

	card, err := s.repo.UpdateCardWith(ctx, id, func(c *model.Card) model.CardUpdate {
		v := !c.ShowCardNumber
		return model.CardUpdate{ShowCardNumber: &v}
	})
	if err != nil {
		return nil, fail(EndpointToggleVisibility, err, MsgToggleVisibilityFailed)
	}
	if card == nil {
		return nil, newAPIError(http.StatusNotFound, MsgCardNotFound)
	}

	msg := MsgCardNumberHidden
	if card.ShowCardNumber {
		msg = MsgCardNumberShown
	}
	return ok(card, msg), nil
}

func (s *CardService) UpdateCard(ctx context.Context, id string, upd model.CardUpdate) (resp *Response[*model.Card], err error) {
	start := begin(EndpointUpdateCard)
	defer func() { observe(EndpointUpdateCard, start, err) }()

	if err := s.latency.wait(ctx, EndpointUpdateCard); err != nil {
		return nil, fail(EndpointUpdateCard, err, MsgUpdateCardFailed)
	}

	card, err := s.repo.UpdateCard(ctx, id, upd)
	if err != nil {
		return nil, fail(EndpointUpdateCard, err, MsgUpdateCardFailed)
	}
	if card == nil {
		return nil, newAPIError(http.StatusNotFound, MsgCardNotFound)
	}
	return ok(card, MsgCardUpdated), nil
}

// DeleteCard removes the card and its transactions. Data is always nil.
func (s *CardService) DeleteCard(ctx context.Context, id string) (resp *Response[any], err error) {
	start := begin(EndpointDeleteCard)
	defer func() { observe(EndpointDeleteCard, start, err) }()

	if err := s.latency.wait(ctx, EndpointDeleteCard); err != nil {
		return nil, fail(EndpointDeleteCard, err, MsgDeleteCardFailed)
	}

	deleted, err := s.repo.DeleteCard(ctx, id)
	if err != nil {
		return nil, fail(EndpointDeleteCard, err, MsgDeleteCardFailed)
	}
	if !deleted {
		return nil, newAPIError(http.StatusNotFound, MsgCardNotFound)
	}
	return ok[any](nil, MsgCardDeleted), nil
}

// ClearAllData drops both collections. Callers are expected to reseed.
func (s *CardService) ClearAllData(ctx context.Context) error {
	if err := s.repo.ClearAllData(ctx); err != nil {
		logger.Error("clearing data failed", "error", err)
		return newAPIError(http.StatusInternalServerError, MsgClearDataFailed)
	}
	return nil
}
