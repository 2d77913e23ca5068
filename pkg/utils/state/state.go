// Package state provides a small database-backed key/value store used to
// remember when maintenance jobs last ran.
package state

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var StateTableName = "_app_state"

// StateEntry is a single key/value row
type StateEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the StateEntry model
func (StateEntry) TableName() string {
	return StateTableName
}

// State manages key/value entries
type State struct {
	db *gorm.DB
}

// NewState migrates the state table and returns a State
func NewState(db *gorm.DB) (*State, error) {
	if err := db.AutoMigrate(&StateEntry{}); err != nil {
		return nil, err
	}
	return &State{db: db}, nil
}

// Get returns the value for a key, or an empty string when the key is absent
func (s *State) Get(key string) (string, error) {
	var entry StateEntry
	result := s.db.Where("key = ?", key).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", result.Error
	}
	return entry.Value, nil
}

// Set creates or updates the value for a key
func (s *State) Set(key, value string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var entry StateEntry
		result := tx.Where("key = ?", key).First(&entry)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return tx.Create(&StateEntry{Key: key, Value: value}).Error
			}
			return result.Error
		}
		entry.Value = value
		return tx.Save(&entry).Error
	})
}

// Delete removes a key
func (s *State) Delete(key string) error {
	return s.db.Where("key = ?", key).Delete(&StateEntry{}).Error
}
