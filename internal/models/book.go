package models

import (
	"time"
)

// Book is a catalog row. DriveID points at the source PDF in external
// storage; nothing enforces that the file still exists.
type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	DriveID         string    `gorm:"index;size:128" json:"drive_id"`
	Title           string    `gorm:"not null" json:"title"`
	ExternalStoryID string    `gorm:"size:64" json:"external_story_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
