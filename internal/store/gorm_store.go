package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-notice/internal/db"
)

// GormStore 基于 kv_entries 表的存储, sqlite 和 mysql 通用
type GormStore struct {
	conn *gorm.DB
}

// NewGormStore conn 需已迁移 kv_entries
func NewGormStore(conn *gorm.DB) *GormStore {
	return &GormStore{conn: conn}
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry db.KVEntry
	err := s.conn.WithContext(ctx).Where("`key` = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(entry.Value), true, nil
}

func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := db.KVEntry{Key: key, Value: string(value), UpdatedAt: time.Now()}
	return s.conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *GormStore) Remove(ctx context.Context, key string) error {
	return s.conn.WithContext(ctx).Where("`key` = ?", key).Delete(&db.KVEntry{}).Error
}
