package models

import (
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookID    uint      `gorm:"not null;index" json:"book_id"`
	Book      Book      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ParentID  *uint     `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Text      string    `gorm:"type:text;not null" json:"text"`
	Edited    bool      `gorm:"default:false" json:"edited"`
	Upvotes   int       `gorm:"default:0" json:"upvotes"`
	Downvotes int       `gorm:"default:0" json:"downvotes"`
	Deleted   bool      `gorm:"default:false;index" json:"deleted"` // Soft delete, rows are never removed
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
