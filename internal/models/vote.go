package models

import (
	"time"
)

// CommentVote records one user's vote on one comment. Value is 1 or -1.
type CommentVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_comment_vote" json:"user_id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_user_comment_vote;index" json:"comment_id"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
}
