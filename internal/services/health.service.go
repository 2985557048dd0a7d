package services

import (
	"context"

	"github.com/nimasrn/card-gateway/internal/storage"
)

type HealthService struct {
	store storage.BlobStore
}

func NewHealthService(store storage.BlobStore) *HealthService {
	return &HealthService{store: store}
}

// Get reports whether the storage backend answers.
func (s *HealthService) Get(ctx context.Context) error {
	return s.store.Ping(ctx)
}
