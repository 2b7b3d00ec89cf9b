package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/streamlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL 将每个键保存为 storage_entries 表中的一行。
type SQL struct {
	db *gorm.DB
}

// NewSQL 基于已迁移的 gorm 连接构造存储
func NewSQL(gdb *gorm.DB) *SQL {
	return &SQL{db: gdb}
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var entry db.StorageEntry
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("get storage entry: %w", err)
	}
	return []byte(entry.Value), nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	entry := db.StorageEntry{Key: key, Value: string(value)}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error; err != nil {
		return fmt.Errorf("set storage entry: %w", err)
	}
	return nil
}
