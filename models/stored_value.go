// models/stored_value.go
package models

import "time"

// StoredValue is one entry of the device's local key-value storage.
type StoredValue struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (StoredValue) TableName() string {
	return "stored_values"
}
