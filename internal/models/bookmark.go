package models

import (
	"time"
)

// Bookmark 用户的阅读书签
type Bookmark struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index;uniqueIndex:idx_user_book" json:"user_id"`
	BookID      uint       `gorm:"not null;index;uniqueIndex:idx_user_book" json:"book_id"`
	Book        Book       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"book"`
	Page        int        `gorm:"default:1" json:"page"`
	Note        string     `gorm:"size:500" json:"note"`
	LastUpdated *time.Time `json:"last_updated"` // Story update time from the last successful feed lookup
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
