// services/local_store.go
package services

import (
	"errors"
	"fmt"

	"mission-console/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Persisted keys of the device's local storage.
const (
	KeyCompletedMissions = "completed-mission-ids"
	KeyUserProfile       = "user-profile"
	KeySessionFlag       = "session-flag"
)

// KeyValueStore is the device-local string storage the progress store persists into.
type KeyValueStore interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// GormKeyValueStore keeps the entries in the stored_values table.
type GormKeyValueStore struct {
	DB *gorm.DB
}

func NewGormKeyValueStore(db *gorm.DB) (*GormKeyValueStore, error) {
	if err := db.AutoMigrate(&models.StoredValue{}); err != nil {
		return nil, fmt.Errorf("failed to migrate stored_values: %w", err)
	}
	return &GormKeyValueStore{DB: db}, nil
}

func (s *GormKeyValueStore) Get(key string) (string, bool, error) {
	var row models.StoredValue
	err := s.DB.Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *GormKeyValueStore) Set(key, value string) error {
	row := models.StoredValue{Key: key, Value: value}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *GormKeyValueStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.DB.Where("key IN ?", keys).Delete(&models.StoredValue{}).Error; err != nil {
		return fmt.Errorf("delete %v: %w", keys, err)
	}
	return nil
}
