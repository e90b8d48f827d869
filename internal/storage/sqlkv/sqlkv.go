// Package sqlkv implements storage.KV on a SQLite table through gorm.
package sqlkv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"gtodo/internal/storage"
)

// Entry is one stored key.
type Entry struct {
	ID        string `gorm:"primarykey;size:128"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for Entry.
func (Entry) TableName() string {
	return "kv_entries"
}

// KV implements storage.KV.
type KV struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*KV, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return New(db)
}

// New wraps an existing gorm connection and migrates the table.
func New(db *gorm.DB) (*KV, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &KV{db: db}, nil
}

// Get implements storage.KV.
func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	if err := k.db.WithContext(ctx).First(&e, "id = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return e.Value, nil
}

// Set implements storage.KV with a single upsert statement.
func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	e := Entry{ID: key, Value: value, UpdatedAt: time.Now()}
	err := k.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete implements storage.KV.
func (k *KV) Delete(ctx context.Context, key string) error {
	result := k.db.WithContext(ctx).Delete(&Entry{}, "id = ?", key)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	if result.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Close implements storage.KV.
func (k *KV) Close() error {
	sqlDB, err := k.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
