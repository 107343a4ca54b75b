package handlers

import (
	"encoding/json"
	"errors"
	"io"

	"readshelf/internal/apperr"
	"readshelf/internal/models"
	"readshelf/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	db       *gorm.DB
	notifier *services.Notifier
}

func NewNotificationHandler(db *gorm.DB, notifier *services.Notifier) *NotificationHandler {
	return &NotificationHandler{db: db, notifier: notifier}
}

func (h *NotificationHandler) List(c *gin.Context) {
	user := currentUser(c)

	query := h.db.Preload("Actor").Where("user_id = ?", user.ID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Limit(50).Find(&notifications).Error; err != nil {
		respondError(c, err)
		return
	}

	var unread int64
	h.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", user.ID, false).Count(&unread)

	respondOK(c, gin.H{"notifications": notifications, "unread_count": unread})
}

func (h *NotificationHandler) find(c *gin.Context) (*models.Notification, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	var notification models.Notification
	if err := h.db.Where("id = ? AND user_id = ?", id, currentUser(c).ID).First(&notification).Error; err != nil {
		return nil, dbError(err, "notification")
	}
	return &notification, nil
}

func (h *NotificationHandler) Read(c *gin.Context) {
	notification, err := h.find(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.db.Model(notification).Update("is_read", true).Error; err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	notification, err := h.find(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.db.Delete(notification).Error; err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

func (h *NotificationHandler) ReadAll(c *gin.Context) {
	user := currentUser(c)

	res := h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	respondOK(c, gin.H{"updated": res.RowsAffected})
}

func (h *NotificationHandler) GetSettings(c *gin.Context) {
	settings, err := h.notifier.Settings(currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"settings": settings})
}

// UpdateSettings rejects keys that NotificationSettingsRequest does not list.
func (h *NotificationHandler) UpdateSettings(c *gin.Context) {
	var req NotificationSettingsRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			respondError(c, apperr.Validation("empty request body"))
			return
		}
		respondError(c, apperr.Validation("invalid request: %v", err))
		return
	}

	settings, err := h.notifier.Settings(currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.NotifyReplies != nil {
		updates["notify_replies"] = *req.NotifyReplies
	}
	if req.NotifyVotes != nil {
		updates["notify_votes"] = *req.NotifyVotes
	}
	if req.EmailReplies != nil {
		updates["email_replies"] = *req.EmailReplies
	}
	if len(updates) > 0 {
		if err := h.db.Model(settings).Updates(updates).Error; err != nil {
			respondError(c, err)
			return
		}
	}

	settings, err = h.notifier.Settings(currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"settings": settings})
}
