package models

import "time"

// Entry is one key/value row of the SQL storage backend.
type Entry struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:longtext;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table used by the SQL storage backend.
func (Entry) TableName() string { return "storage_entries" }
