package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/card-gateway/internal/model"
	"github.com/nimasrn/card-gateway/internal/services"
	xhttp "github.com/nimasrn/card-gateway/pkg/http"
)

type TransactionService interface {
	ListTransactions(ctx context.Context) (*services.Response[[]*model.Transaction], error)
	ListTransactionsByCard(ctx context.Context, cardID string) (*services.Response[[]*model.Transaction], error)
}

type TransactionHandler struct {
	svc TransactionService
}

func RegisterTransactionRoutes(e *router.Group, h *TransactionHandler) {
	e.GET("/transactions", h.ListTransactions)
	e.GET("/transactions/card/{cardId}", h.ListTransactionsByCard)
}

func NewTransactionHandler(transactionService TransactionService) *TransactionHandler {
	return &TransactionHandler{
		svc: transactionService,
	}
}

func (h *TransactionHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	resp, err := h.svc.ListTransactions(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, resp)
}

func (h *TransactionHandler) ListTransactionsByCard(ctx *xhttp.RequestCtx) {
	resp, err := h.svc.ListTransactionsByCard(ctx, pathParam(ctx, "cardId"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, resp)
}
