package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// StorageEntry is one durable key/value pair scoped to a remote API origin.
// (Origin, Key) is unique; Value may be sealed ciphertext.
type StorageEntry struct {
	BaseModel
	Origin    string    `json:"origin" gorm:"not null;uniqueIndex:idx_storage_origin_key"`
	Key       string    `json:"key" gorm:"column:entry_key;not null;uniqueIndex:idx_storage_origin_key"`
	Value     string    `json:"-" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&StorageEntry{},
	}

	return db.AutoMigrate(models...)
}
