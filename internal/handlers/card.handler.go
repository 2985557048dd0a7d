package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/card-gateway/internal/model"
	"github.com/nimasrn/card-gateway/internal/services"
	xhttp "github.com/nimasrn/card-gateway/pkg/http"
)

type CardService interface {
	ListCards(ctx context.Context) (*services.Response[[]*model.Card], error)
	AddCard(ctx context.Context, req model.CardCreateRequest) (*services.Response[*model.Card], error)
	ToggleCardFreeze(ctx context.Context, id string) (*services.Response[*model.Card], error)
	ToggleCardNumberVisibility(ctx context.Context, id string) (*services.Response[*model.Card], error)
	UpdateCard(ctx context.Context, id string, upd model.CardUpdate) (*services.Response[*model.Card], error)
	DeleteCard(ctx context.Context, id string) (*services.Response[any], error)
	ClearAllData(ctx context.Context) error
}

type CardHandler struct {
	svc CardService
}

func RegisterCardRoutes(e *router.Group, h *CardHandler) {
	e.GET("/cards", h.ListCards)
	e.POST("/cards", h.AddCard)
	e.PATCH("/cards/{id}", h.UpdateCard)
	e.PATCH("/cards/{id}/freeze", h.ToggleCardFreeze)
	e.PATCH("/cards/{id}/show-number", h.ToggleCardNumberVisibility)
	e.DELETE("/cards/{id}", h.DeleteCard)
	e.DELETE("/data", h.ClearAllData)
}

func NewCardHandler(cardService CardService) *CardHandler {
	return &CardHandler{
		svc: cardService,
	}
}

/* --------------------------------- Routes ----------------------------------- */

func (h *CardHandler) ListCards(ctx *xhttp.RequestCtx) {
	resp, err := h.svc.ListCards(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, resp)
}

func (h *CardHandler) AddCard(ctx *xhttp.RequestCtx) {
	var req model.CardCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		badRequest(ctx, "invalid JSON: "+err.Error())
		return
	}
	resp, err := h.svc.AddCard(ctx, req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, resp)
}

func (h *CardHandler) UpdateCard(ctx *xhttp.RequestCtx) {
	var upd model.CardUpdate
	if err := readJSON(ctx, &upd); err != nil {
		badRequest(ctx, "invalid JSON: "+err.Error())
		return
	}
	resp, err := h.svc.UpdateCard(ctx, pathParam(ctx, "id"), upd)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, resp)
}

func (h *CardHandler) ToggleCardFreeze(ctx *xhttp.RequestCtx) {
	resp, err := h.svc.ToggleCardFreeze(ctx, pathParam(ctx, "id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, resp)
}

func (h *CardHandler) ToggleCardNumberVisibility(ctx *xhttp.RequestCtx) {
	resp, err := h.svc.ToggleCardNumberVisibility(ctx, pathParam(ctx, "id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, resp)
}

func (h *CardHandler) DeleteCard(ctx *xhttp.RequestCtx) {
	resp, err := h.svc.DeleteCard(ctx, pathParam(ctx, "id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, resp)
}

// ClearAllData wipes both collections. The next card listing reseeds.
func (h *CardHandler) ClearAllData(ctx *xhttp.RequestCtx) {
	if err := h.svc.ClearAllData(ctx); err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, services.Response[any]{Success: true, Message: "All data cleared"})
}
