package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeReplyComment NotificationType = "reply_comment"
	NotificationTypeCommentVote  NotificationType = "comment_vote"
	NotificationTypeSystem       NotificationType = "system"
)

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"` // Receiver
	ActorID   *uint            `gorm:"index" json:"actor_id"`         // Sender
	Actor     *User            `gorm:"foreignKey:ActorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"actor,omitempty"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Message   string           `gorm:"type:text" json:"message"`
	BookID    *uint            `json:"book_id"`
	CommentID *uint            `json:"comment_id"`
	IsRead    bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationSetting holds a user's notification preferences. A row is
// created with the defaults the first time it is read.
type NotificationSetting struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	UserID        uint      `gorm:"uniqueIndex;not null" json:"-"`
	NotifyReplies bool      `gorm:"not null" json:"notify_replies"`
	NotifyVotes   bool      `gorm:"not null" json:"notify_votes"`
	EmailReplies  bool      `gorm:"not null" json:"email_replies"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DefaultNotificationSetting returns the preferences a new user starts with.
func DefaultNotificationSetting(userID uint) NotificationSetting {
	return NotificationSetting{
		UserID:        userID,
		NotifyReplies: true,
		NotifyVotes:   false,
		EmailReplies:  false,
	}
}
