package handlers

import (
	"strings"

	"readshelf/internal/apperr"
	"readshelf/internal/models"
	"readshelf/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// UpdateProfile 更新昵称、简介和邮箱
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user := currentUser(c)

	var req ProfileRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" {
			updates["email"] = nil
		} else {
			var count int64
			h.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&count)
			if count > 0 {
				respondError(c, apperr.Validation("email already registered"))
				return
			}
			updates["email"] = email
		}
	}

	if len(updates) > 0 {
		if err := h.db.Model(user).Updates(updates).Error; err != nil {
			respondError(c, err)
			return
		}
	}

	var fresh models.User
	if err := h.db.First(&fresh, user.ID).Error; err != nil {
		respondError(c, dbError(err, "user"))
		return
	}
	respondOK(c, gin.H{"user": fresh})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	user := currentUser(c)

	var req PasswordRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	if !utils.CheckPasswordHash(req.OldPassword, user.Password) {
		respondError(c, apperr.Validation("old password is incorrect"))
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.db.Model(user).Update("password", hash).Error; err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}
