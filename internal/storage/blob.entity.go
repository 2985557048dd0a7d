package storage

import "time"

type BlobEntity struct {
	Key       string    `gorm:"primaryKey;column:key;size:128"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (BlobEntity) TableName() string {
	return "blobs"
}
