package services

import (
	"context"

	"github.com/nimasrn/card-gateway/internal/model"
)

type TransactionRepository interface {
	ListTransactions(ctx context.Context) ([]*model.Transaction, error)
	ListTransactionsByCard(ctx context.Context, cardID string) ([]*model.Transaction, error)
}

type TransactionService struct {
	repo    TransactionRepository
	latency Latency
}

func NewTransactionService(repo TransactionRepository, latency Latency) *TransactionService {
	return &TransactionService{
		repo:    repo,
		latency: latency,
	}
}

// ListTransactions returns every transaction in storage order.
func (s *TransactionService) ListTransactions(ctx context.Context) (resp *Response[[]*model.Transaction], err error) {
	start := begin(EndpointListTransactions)
	defer func() { observe(EndpointListTransactions, start, err) }()

	if err := s.latency.wait(ctx, EndpointListTransactions); err != nil {
		return nil, fail(EndpointListTransactions, err, MsgFetchTransactionsFailed)
	}

	txns, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fail(EndpointListTransactions, err, MsgFetchTransactionsFailed)
	}
	return ok(txns, MsgTransactionsFetched), nil
}

// ListTransactionsByCard returns all transactions of one card. An unknown
// card yields an empty list, not a 404.
func (s *TransactionService) ListTransactionsByCard(ctx context.Context, cardID string) (resp *Response[[]*model.Transaction], err error) {
	start := begin(EndpointTransactionsByCard)
	defer func() { observe(EndpointTransactionsByCard, start, err) }()

	if err := s.latency.wait(ctx, EndpointTransactionsByCard); err != nil {
		return nil, fail(EndpointTransactionsByCard, err, MsgFetchCardTransactionsFailed)
	}

	txns, err := s.repo.ListTransactionsByCard(ctx, cardID)
	if err != nil {
		return nil, fail(EndpointTransactionsByCard, err, MsgFetchCardTransactionsFailed)
	}
	return ok(txns, MsgCardTransactionsFetched), nil
}
