package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nimasrn/card-gateway/internal/generator"
	"github.com/nimasrn/card-gateway/internal/model"
	"github.com/nimasrn/card-gateway/internal/repository"
	"github.com/nimasrn/card-gateway/internal/services"
	"github.com/nimasrn/card-gateway/internal/storage"
	xhttp "github.com/nimasrn/card-gateway/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type MockCardService struct {
	mock.Mock
}

func (m *MockCardService) ListCards(ctx context.Context) (*services.Response[[]*model.Card], error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Response[[]*model.Card]), args.Error(1)
}

func (m *MockCardService) AddCard(ctx context.Context, req model.CardCreateRequest) (*services.Response[*model.Card], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Response[*model.Card]), args.Error(1)
}

func (m *MockCardService) ToggleCardFreeze(ctx context.Context, id string) (*services.Response[*model.Card], error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Response[*model.Card]), args.Error(1)
}

func (m *MockCardService) ToggleCardNumberVisibility(ctx context.Context, id string) (*services.Response[*model.Card], error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Response[*model.Card]), args.Error(1)
}

func (m *MockCardService) UpdateCard(ctx context.Context, id string, upd model.CardUpdate) (*services.Response[*model.Card], error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Response[*model.Card]), args.Error(1)
}

func (m *MockCardService) DeleteCard(ctx context.Context, id string) (*services.Response[any], error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Response[any]), args.Error(1)
}

func (m *MockCardService) ClearAllData(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	if body != nil {
		req.SetBody(body)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	return ctx
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
}

func decode(t *testing.T, ctx *xhttp.RequestCtx) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	return env
}

func TestCardHandler_AddCard(t *testing.T) {
	t.Run("successful card creation", func(t *testing.T) {
		svc := new(MockCardService)
		handler := NewCardHandler(svc)

		svc.On("AddCard", mock.Anything, model.CardCreateRequest{Name: "Jane Doe"}).
			Return(&services.Response[*model.Card]{Data: &model.Card{ID: "card_1", Name: "Jane Doe"}, Success: true, Message: services.MsgCardAdded}, nil)

		ctx := setupTestContext("POST", "/api/v1/cards", []byte(`{"name":"Jane Doe"}`))
		handler.AddCard(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		env := decode(t, ctx)
		assert.True(t, env.Success)
		assert.Equal(t, services.MsgCardAdded, env.Message)

		var c model.Card
		require.NoError(t, json.Unmarshal(env.Data, &c))
		assert.Equal(t, "card_1", c.ID)

		svc.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockCardService)
		handler := NewCardHandler(svc)

		ctx := setupTestContext("POST", "/api/v1/cards", []byte("invalid json"))
		handler.AddCard(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		env := decode(t, ctx)
		assert.False(t, env.Success)
		assert.Equal(t, 400, env.Status)
		assert.Contains(t, env.Message, "invalid JSON")
		svc.AssertNotCalled(t, "AddCard", mock.Anything, mock.Anything)
	})

	t.Run("validation error", func(t *testing.T) {
		svc := new(MockCardService)
		handler := NewCardHandler(svc)

		svc.On("AddCard", mock.Anything, mock.Anything).
			Return(nil, &services.APIError{Success: false, Message: services.MsgCardNameRequired, Status: 400})

		ctx := setupTestContext("POST", "/api/v1/cards", []byte(`{"name":""}`))
		handler.AddCard(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		assert.Equal(t, services.MsgCardNameRequired, decode(t, ctx).Message)
	})
}

func TestCardHandler_AddCardEmptyBody(t *testing.T) {
	h := newTestEngine().Handler()

	for _, body := range [][]byte{nil, []byte("  "), []byte("{}")} {
		ctx := serve(h, "POST", "/api/v1/cards", body)
		assert.Equal(t, 400, ctx.Response.StatusCode(), "body %q", body)
		assert.Equal(t, services.MsgCardNameRequired, decode(t, ctx).Message, "body %q", body)
	}
}

func TestCardHandler_ToggleCardFreeze(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		svc := new(MockCardService)
		handler := NewCardHandler(svc)

		svc.On("ToggleCardFreeze", mock.Anything, "card_missing").
			Return(nil, &services.APIError{Success: false, Message: services.MsgCardNotFound, Status: 404})

		ctx := setupTestContext("PATCH", "/api/v1/cards/card_missing/freeze", nil)
		ctx.SetUserValue("id", "card_missing")
		handler.ToggleCardFreeze(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
		env := decode(t, ctx)
		assert.False(t, env.Success)
		assert.Equal(t, 404, env.Status)
		assert.Equal(t, services.MsgCardNotFound, env.Message)
		svc.AssertExpectations(t)
	})

	t.Run("unshaped error is hidden", func(t *testing.T) {
		svc := new(MockCardService)
		handler := NewCardHandler(svc)

		svc.On("ToggleCardFreeze", mock.Anything, "c").Return(nil, errors.New("redis: connection refused"))

		ctx := setupTestContext("PATCH", "/api/v1/cards/c/freeze", nil)
		ctx.SetUserValue("id", "c")
		handler.ToggleCardFreeze(ctx)

		assert.Equal(t, 500, ctx.Response.StatusCode())
		assert.NotContains(t, string(ctx.Response.Body()), "redis")
	})
}

func TestCardHandler_UpdateCard(t *testing.T) {
	svc := new(MockCardService)
	handler := NewCardHandler(svc)

	svc.On("UpdateCard", mock.Anything, "card_1", mock.MatchedBy(func(u model.CardUpdate) bool {
		return u.Name != nil && *u.Name == "New" && u.Balance == nil
	})).Return(&services.Response[*model.Card]{Data: &model.Card{ID: "card_1", Name: "New"}, Success: true, Message: services.MsgCardUpdated}, nil)

	ctx := setupTestContext("PATCH", "/api/v1/cards/card_1", []byte(`{"name":"New"}`))
	ctx.SetUserValue("id", "card_1")
	handler.UpdateCard(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Equal(t, services.MsgCardUpdated, decode(t, ctx).Message)
	svc.AssertExpectations(t)
}

func TestCardHandler_DeleteCard(t *testing.T) {
	svc := new(MockCardService)
	handler := NewCardHandler(svc)

	svc.On("DeleteCard", mock.Anything, "card_1").
		Return(&services.Response[any]{Success: true, Message: services.MsgCardDeleted}, nil)

	ctx := setupTestContext("DELETE", "/api/v1/cards/card_1", nil)
	ctx.SetUserValue("id", "card_1")
	handler.DeleteCard(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	env := decode(t, ctx)
	assert.Equal(t, "null", string(env.Data))
	assert.Equal(t, services.MsgCardDeleted, env.Message)
}

func TestCardHandler_ClearAllData(t *testing.T) {
	svc := new(MockCardService)
	handler := NewCardHandler(svc)
	svc.On("ClearAllData", mock.Anything).Return(nil)

	ctx := setupTestContext("DELETE", "/api/v1/data", nil)
	handler.ClearAllData(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.True(t, decode(t, ctx).Success)
	svc.AssertExpectations(t)
}

// newTestEngine wires the real stack over an in-memory backend.
func newTestEngine() *xhttp.Engine {
	store := storage.NewMemoryStore()
	repo := repository.NewCardRepository(store, generator.New())

	s := xhttp.CreateServer()
	s.Use(xhttp.RecoverMiddleware)
	g := s.Router.Group("/api/v1")
	RegisterCardRoutes(g, NewCardHandler(services.NewCardService(repo, services.NoLatency, true)))
	RegisterTransactionRoutes(g, NewTransactionHandler(services.NewTransactionService(repo, services.NoLatency)))
	RegisterHealthRoutes(g, NewHealthHandler(services.NewHealthService(store)))
	return s
}

func serve(h xhttp.RequestHandler, method, path string, body []byte) *xhttp.RequestCtx {
	ctx := setupTestContext(method, path, body)
	h(ctx)
	return ctx
}

func TestRoutes_EndToEnd(t *testing.T) {
	h := newTestEngine().Handler()

	ctx := serve(h, "GET", "/api/v1/cards", nil)
	require.Equal(t, 200, ctx.Response.StatusCode())
	var cards []*model.Card
	require.NoError(t, json.Unmarshal(decode(t, ctx).Data, &cards))
	require.Len(t, cards, 4)
	id := cards[0].ID

	ctx = serve(h, "PATCH", "/api/v1/cards/"+id+"/freeze", nil)
	require.Equal(t, 200, ctx.Response.StatusCode())
	assert.Equal(t, services.MsgCardFrozen, decode(t, ctx).Message)

	ctx = serve(h, "PATCH", "/api/v1/cards/"+id+"/show-number", nil)
	require.Equal(t, 200, ctx.Response.StatusCode())
	assert.Equal(t, services.MsgCardNumberShown, decode(t, ctx).Message)

	ctx = serve(h, "GET", "/api/v1/transactions/card/"+id, nil)
	require.Equal(t, 200, ctx.Response.StatusCode())
	var txns []*model.Transaction
	require.NoError(t, json.Unmarshal(decode(t, ctx).Data, &txns))
	assert.NotEmpty(t, txns)

	ctx = serve(h, "DELETE", "/api/v1/cards/"+id, nil)
	require.Equal(t, 200, ctx.Response.StatusCode())

	ctx = serve(h, "GET", "/api/v1/transactions/card/"+id, nil)
	require.NoError(t, json.Unmarshal(decode(t, ctx).Data, &txns))
	assert.Empty(t, txns)

	ctx = serve(h, "PATCH", "/api/v1/cards/card_missing/freeze", nil)
	assert.Equal(t, 404, ctx.Response.StatusCode())
	assert.Equal(t, services.MsgCardNotFound, decode(t, ctx).Message)

	ctx = serve(h, "GET", "/api/v1/health", nil)
	assert.Equal(t, 200, ctx.Response.StatusCode())
	assert.Equal(t, "success", string(ctx.Response.Body()))

	ctx = serve(h, "GET", "/api/v1/nope", nil)
	assert.Equal(t, 404, ctx.Response.StatusCode())
}
