package storage

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/card-gateway/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PgStore keeps each blob as one row of the blobs table.
type PgStore struct {
	*pg.DB
}

func NewPgStore(db *pg.DB) *PgStore {
	return &PgStore{db}
}

func (s *PgStore) Get(ctx context.Context, key string) ([]byte, error) {
	var e BlobEntity
	err := s.Read(ctx).Where("key = ?", key).Take(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e.Value, nil
}

func (s *PgStore) Put(ctx context.Context, key string, value []byte) error {
	e := &BlobEntity{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.Write(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(e).Error
}

// PutAll upserts every row inside one transaction.
func (s *PgStore) PutAll(ctx context.Context, values map[string][]byte) error {
	return s.WithinTransaction(ctx, func(ctx context.Context) error {
		for k, v := range values {
			if err := s.Put(ctx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *PgStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.Write(ctx).Where("key IN ?", keys).Delete(&BlobEntity{}).Error
}
