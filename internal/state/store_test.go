package state

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/nimasrn/card-gateway/internal/generator"
	"github.com/nimasrn/card-gateway/internal/model"
	"github.com/nimasrn/card-gateway/internal/repository"
	"github.com/nimasrn/card-gateway/internal/services"
	"github.com/nimasrn/card-gateway/internal/storage"
	"github.com/nimasrn/card-gateway/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCardAPI struct {
	mock.Mock
}

func (m *MockCardAPI) ListCards(ctx context.Context) (*services.Response[[]*model.Card], error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Response[[]*model.Card]), args.Error(1)
}

func (m *MockCardAPI) AddCard(ctx context.Context, req model.CardCreateRequest) (*services.Response[*model.Card], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Response[*model.Card]), args.Error(1)
}

func (m *MockCardAPI) ToggleCardFreeze(ctx context.Context, id string) (*services.Response[*model.Card], error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Response[*model.Card]), args.Error(1)
}

func (m *MockCardAPI) ToggleCardNumberVisibility(ctx context.Context, id string) (*services.Response[*model.Card], error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Response[*model.Card]), args.Error(1)
}

func (m *MockCardAPI) UpdateCard(ctx context.Context, id string, upd model.CardUpdate) (*services.Response[*model.Card], error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Response[*model.Card]), args.Error(1)
}

func (m *MockCardAPI) DeleteCard(ctx context.Context, id string) (*services.Response[any], error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Response[any]), args.Error(1)
}

type MockTransactionAPI struct {
	mock.Mock
}

func (m *MockTransactionAPI) ListTransactions(ctx context.Context) (*services.Response[[]*model.Transaction], error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Response[[]*model.Transaction]), args.Error(1)
}

func (m *MockTransactionAPI) ListTransactionsByCard(ctx context.Context, cardID string) (*services.Response[[]*model.Transaction], error) {
	args := m.Called(ctx, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Response[[]*model.Transaction]), args.Error(1)
}

func setupStore(t *testing.T) *Store {
	t.Helper()
	repo := repository.NewCardRepository(storage.NewMemoryStore(), generator.New())
	return NewStore(
		services.NewCardService(repo, services.NoLatency, true),
		services.NewTransactionService(repo, services.NoLatency),
		nil,
	)
}

func apiError(status int, msg string) error {
	return &services.APIError{Success: false, Message: msg, Status: status}
}

func card(id string, created time.Time) *model.Card {
	return &model.Card{ID: id, Name: id, CreatedAt: created, RecentTransactions: []*model.Transaction{}}
}

func TestStore_FetchCards(t *testing.T) {
	s := setupStore(t)

	res := s.FetchCards(context.Background())
	require.True(t, res.IsOk())
	assert.Len(t, res.Value, 4)

	st := s.Cards()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	require.Len(t, st.Cards, 4)
	for i := 1; i < len(st.Cards); i++ {
		assert.False(t, st.Cards[i].CreatedAt.After(st.Cards[i-1].CreatedAt))
	}
}

func TestStore_FailedFetchKeepsPriorList(t *testing.T) {
	api := new(MockCardAPI)
	s := NewStore(api, new(MockTransactionAPI), nil)

	now := time.Now()
	s.InitializeCards([]*model.Card{card("a", now)})

	api.On("ListCards", mock.Anything).Return(nil, apiError(http.StatusInternalServerError, services.MsgFetchCardsFailed))
	res := s.FetchCards(context.Background())
	assert.False(t, res.IsOk())

	st := s.Cards()
	assert.False(t, st.Loading)
	assert.Equal(t, services.MsgFetchCardsFailed, st.Error)
	require.Len(t, st.Cards, 1)
	assert.Equal(t, "a", st.Cards[0].ID)

	s.ClearError()
	assert.Empty(t, s.Cards().Error)
}

func TestStore_AddCardPrepends(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.True(t, s.FetchCards(ctx).IsOk())
	res := s.AddCard(ctx, model.CardCreateRequest{Name: "Jane Doe"})
	require.True(t, res.IsOk())

	st := s.Cards()
	assert.False(t, st.AddingCard)
	require.Len(t, st.Cards, 5)
	assert.Equal(t, res.Value.ID, st.Cards[0].ID)
}

func TestStore_AddCardRejected(t *testing.T) {
	s := setupStore(t)

	res := s.AddCard(context.Background(), model.CardCreateRequest{Name: ""})
	require.False(t, res.IsOk())

	st := s.Cards()
	assert.False(t, st.AddingCard)
	assert.Equal(t, services.MsgCardNameRequired, st.Error)
	assert.Empty(t, st.Cards)
}

func TestStore_ToggleReplacesCardInPlace(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	cards := s.FetchCards(ctx).Value
	target := cards[2].ID

	res := s.ToggleCardFreeze(ctx, target)
	require.True(t, res.IsOk())
	assert.True(t, res.Value.IsFrozen)

	st := s.Cards()
	assert.Empty(t, st.UpdatingCardID)
	assert.Equal(t, target, st.Cards[2].ID)
	assert.True(t, st.Cards[2].IsFrozen)

	res = s.ToggleCardNumberVisibility(ctx, target)
	require.True(t, res.IsOk())
	assert.True(t, s.Cards().Cards[2].ShowCardNumber)

	name := "Renamed"
	res = s.UpdateCard(ctx, target, model.CardUpdate{Name: &name})
	require.True(t, res.IsOk())
	assert.Equal(t, "Renamed", s.Cards().Cards[2].Name)
}

func TestStore_UpdatingFlagClearedOnFailure(t *testing.T) {
	s := setupStore(t)

	var events []Event
	var mu sync.Mutex
	unsubscribe := s.Subscribe(func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	defer unsubscribe()

	res := s.ToggleCardFreeze(context.Background(), "card_missing")
	require.False(t, res.IsOk())

	st := s.Cards()
	assert.Empty(t, st.UpdatingCardID)
	assert.Equal(t, services.MsgCardNotFound, st.Error)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 2)
	assert.Equal(t, Event{Action: ActionToggleCardFreeze, Phase: PhasePending, CardID: "card_missing"}, events[0])
	assert.Equal(t, Event{Action: ActionToggleCardFreeze, Phase: PhaseRejected, CardID: "card_missing", Err: services.MsgCardNotFound}, events[1])
}

func TestStore_PendingMarksUpdatingCard(t *testing.T) {
	api := new(MockCardAPI)
	s := NewStore(api, new(MockTransactionAPI), nil)
	s.InitializeCards([]*model.Card{card("a", time.Now())})

	var seen string
	api.On("ToggleCardFreeze", mock.Anything, "a").Run(func(mock.Arguments) {
		seen = s.Cards().UpdatingCardID
	}).Return(&services.Response[*model.Card]{Data: &model.Card{ID: "a", IsFrozen: true}, Success: true}, nil)

	require.True(t, s.ToggleCardFreeze(context.Background(), "a").IsOk())
	assert.Equal(t, "a", seen)
	assert.Empty(t, s.Cards().UpdatingCardID)
}

func TestStore_DeleteCardRemoves(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	cards := s.FetchCards(ctx).Value
	id := cards[0].ID

	res := s.DeleteCard(ctx, id)
	require.True(t, res.IsOk())
	assert.Equal(t, id, res.Value)

	st := s.Cards()
	assert.Len(t, st.Cards, 3)
	for _, c := range st.Cards {
		assert.NotEqual(t, id, c.ID)
	}

	res = s.DeleteCard(ctx, id)
	assert.False(t, res.IsOk())
	assert.Equal(t, services.MsgCardNotFound, s.Cards().Error)
	assert.Len(t, s.Cards().Cards, 3)
}

func TestStore_Transactions(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	cards := s.FetchCards(ctx).Value
	all := s.FetchTransactions(ctx)
	require.True(t, all.IsOk())
	total := len(s.Transactions().Transactions)
	assert.Equal(t, len(all.Value), total)

	byCard := s.FetchTransactionsByCard(ctx, cards[0].ID)
	require.True(t, byCard.IsOk())
	assert.Len(t, s.Transactions().Transactions, total, "replacing a card's transactions keeps the total")

	// unknown card returns nothing and leaves the list alone
	require.True(t, s.FetchTransactionsByCard(ctx, "card_missing").IsOk())
	assert.Len(t, s.Transactions().Transactions, total)

	s.ClearTransactions()
	assert.Empty(t, s.Transactions().Transactions)
}

func TestStore_FetchTransactionsRejected(t *testing.T) {
	txnAPI := new(MockTransactionAPI)
	s := NewStore(new(MockCardAPI), txnAPI, nil)

	txnAPI.On("ListTransactions", mock.Anything).Return(nil, context.DeadlineExceeded)
	res := s.FetchTransactions(context.Background())
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)

	st := s.Transactions()
	assert.False(t, st.Loading)
	assert.Equal(t, "Failed to fetch transactions", st.Error)

	s.ClearTransactionsError()
	assert.Empty(t, s.Transactions().Error)
}

func TestStore_SnapshotsAreCopies(t *testing.T) {
	s := setupStore(t)
	s.FetchCards(context.Background())

	st := s.Cards()
	st.Cards[0].Name = "mutated"
	st.Cards = st.Cards[:1]

	fresh := s.Cards()
	assert.Len(t, fresh.Cards, 4)
	assert.NotEqual(t, "mutated", fresh.Cards[0].Name)
}

func TestStore_SetSelectedCard(t *testing.T) {
	s := setupStore(t)
	s.SetSelectedCard("card_1")
	assert.Equal(t, "card_1", s.Cards().SelectedCardID)
	s.SetSelectedCard("")
	assert.Empty(t, s.Cards().SelectedCardID)
}

func TestStore_InitializeCardsSorts(t *testing.T) {
	s := NewStore(new(MockCardAPI), new(MockTransactionAPI), nil)
	now := time.Now()
	s.InitializeCards([]*model.Card{card("old", now.Add(-time.Hour)), card("new", now)})

	st := s.Cards()
	assert.Equal(t, "new", st.Cards[0].ID)
	assert.Equal(t, "old", st.Cards[1].ID)
}

func TestDispatch_RunsOnPool(t *testing.T) {
	pool := worker.NewWorkerManager(8, 2)
	go func() { _ = pool.Start(context.Background()) }()
	defer pool.Exit()

	repo := repository.NewCardRepository(storage.NewMemoryStore(), generator.New())
	s := NewStore(
		services.NewCardService(repo, services.NoLatency, true),
		services.NewTransactionService(repo, services.NoLatency),
		pool,
	)
	ctx := context.Background()

	select {
	case res := <-Dispatch(ctx, s, s.FetchCards):
		require.True(t, res.IsOk())
		assert.Len(t, res.Value, 4)
	case <-time.After(2 * time.Second):
		t.Fatal("dispatched action never completed")
	}

	id := s.Cards().Cards[0].ID
	a := Dispatch(ctx, s, func(ctx context.Context) Result[*model.Card] { return s.ToggleCardFreeze(ctx, id) })
	b := Dispatch(ctx, s, func(ctx context.Context) Result[*model.Card] { return s.ToggleCardFreeze(ctx, id) })
	require.True(t, (<-a).IsOk())
	require.True(t, (<-b).IsOk())

	// two toggles on the same card must both persist
	fresh := s.FetchCards(ctx).Value
	for _, c := range fresh {
		if c.ID == id {
			assert.False(t, c.IsFrozen)
		}
	}
}

func TestDispatch_ClosedPool(t *testing.T) {
	pool := worker.NewWorkerManager(1, 1)
	pool.Exit()
	s := NewStore(new(MockCardAPI), new(MockTransactionAPI), pool)

	res := <-Dispatch(context.Background(), s, s.FetchCards)
	assert.ErrorIs(t, res.Err, worker.ErrPoolClosed)
}

type panickingCardAPI struct {
	MockCardAPI
}

func (p *panickingCardAPI) ListCards(context.Context) (*services.Response[[]*model.Card], error) {
	var resp *services.Response[[]*model.Card]
	return &services.Response[[]*model.Card]{Data: resp.Data}, nil
}

func waitResult[T any](t *testing.T, ch <-chan Result[T]) Result[T] {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch channel received nothing")
	}
	return Result[T]{}
}

func TestDispatch_PanickingActionDeliversError(t *testing.T) {
	pool := worker.NewWorkerManager(4, 1)
	go func() { _ = pool.Start(context.Background()) }()
	defer pool.Exit()

	s := NewStore(new(MockCardAPI), new(MockTransactionAPI), pool)
	res := waitResult(t, Dispatch(context.Background(), s, func(context.Context) Result[*model.Card] {
		var m map[string]int
		m["x"] = 1
		return Ok[*model.Card](nil)
	}))
	assert.ErrorIs(t, res.Err, ErrActionPanicked)

	// the pool keeps serving after the panic
	ok := waitResult(t, Dispatch(context.Background(), s, func(context.Context) Result[int] { return Ok(1) }))
	assert.True(t, ok.IsOk())
}

func TestDispatch_WithoutPoolRecoversPanic(t *testing.T) {
	s := NewStore(new(MockCardAPI), new(MockTransactionAPI), nil)
	res := waitResult(t, Dispatch(context.Background(), s, func(context.Context) Result[int] {
		panic("boom")
	}))
	assert.ErrorIs(t, res.Err, ErrActionPanicked)
}

func TestDispatch_JobDroppedOnExit(t *testing.T) {
	pool := worker.NewWorkerManager(4, 1)
	s := NewStore(new(MockCardAPI), new(MockTransactionAPI), pool)

	ch := Dispatch(context.Background(), s, s.FetchCards)
	pool.Exit()

	res := waitResult(t, ch)
	assert.ErrorIs(t, res.Err, worker.ErrPoolClosed)
	assert.False(t, s.Cards().Loading)
}

func TestDispatch_JobDroppedOnContextCancel(t *testing.T) {
	pool := worker.NewWorkerManager(4, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, pool.Start(ctx), worker.ErrWorkersTerminated)

	s := NewStore(new(MockCardAPI), new(MockTransactionAPI), pool)
	res := waitResult(t, Dispatch(context.Background(), s, s.FetchCards))
	assert.ErrorIs(t, res.Err, worker.ErrPoolClosed)
}

func TestStore_PanickingAPICallIsRejected(t *testing.T) {
	s := NewStore(&panickingCardAPI{}, new(MockTransactionAPI), nil)

	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })

	res := waitResult(t, Dispatch(context.Background(), s, s.FetchCards))
	require.ErrorIs(t, res.Err, ErrActionPanicked)

	st := s.Cards()
	assert.False(t, st.Loading)
	assert.Contains(t, st.Error, "action panicked")
	require.Len(t, events, 2)
	assert.Equal(t, PhaseRejected, events[1].Phase)
}
