package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dailypost/dailypost/models"
)

// SQL stores the namespace as rows of the storage_entries table.
type SQL struct {
	db    *gorm.DB
	quota int64
}

var _ KV = (*SQL)(nil)

// NewSQL wraps an open gorm connection. The table must exist; see Migrate.
func NewSQL(db *gorm.DB, quota int64) *SQL {
	return &SQL{db: db, quota: quota}
}

// Migrate creates the storage_entries table when missing.
func Migrate(db *gorm.DB) error {
	if db.Migrator().HasTable(&models.Entry{}) {
		return nil
	}
	return db.AutoMigrate(&models.Entry{})
}

// Get implements KV.
func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var e models.Entry
	err := s.db.WithContext(ctx).First(&e, "`key` = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load entry %s: %w", key, err)
	}
	return e.Value, true, nil
}

// Set implements KV. Usage is summed inside the same transaction as the upsert.
func (s *SQL) Set(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.quota > 0 {
			var others int64
			if err := tx.Model(&models.Entry{}).
				Where("`key` <> ?", key).
				Select("COALESCE(SUM(LENGTH(`key`) + LENGTH(`value`)), 0)").
				Scan(&others).Error; err != nil {
				return fmt.Errorf("failed to measure storage usage: %w", err)
			}
			if others+usage(key, value) > s.quota {
				return ErrQuotaExceeded
			}
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&models.Entry{Key: key, Value: value}).Error
		if err != nil {
			return fmt.Errorf("failed to save entry %s: %w", key, err)
		}
		return nil
	})
}

// Remove implements KV.
func (s *SQL) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Entry{}, "`key` = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", key, err)
	}
	return nil
}
