package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;size:32;not null" json:"username"`
	Email       *string   `gorm:"uniqueIndex" json:"email"`                    // Optional, unique when set
	Password    string    `gorm:"not null" json:"-"`                           // Hash
	Role        string    `gorm:"size:20;default:'user';not null" json:"role"` // user, admin
	DisplayName string    `gorm:"size:64" json:"display_name"`
	Bio         string    `gorm:"size:200" json:"bio"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
