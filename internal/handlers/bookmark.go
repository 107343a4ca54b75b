package handlers

import (
	"errors"
	"log"

	"readshelf/internal/apperr"
	"readshelf/internal/models"
	"readshelf/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BookmarkHandler struct {
	db      *gorm.DB
	stories services.StoryUpdates
}

// NewBookmarkHandler stories may be nil, bookmarks then only carry the
// stored last_updated.
func NewBookmarkHandler(db *gorm.DB, stories services.StoryUpdates) *BookmarkHandler {
	return &BookmarkHandler{db: db, stories: stories}
}

// List 返回用户书签，并尝试从故事订阅源刷新 last_updated
func (h *BookmarkHandler) List(c *gin.Context) {
	user := currentUser(c)

	var bookmarks []models.Bookmark
	if err := h.db.Preload("Book").Where("user_id = ?", user.ID).Order("updated_at DESC").Find(&bookmarks).Error; err != nil {
		respondError(c, err)
		return
	}

	if h.stories != nil {
		for i := range bookmarks {
			h.refreshLastUpdated(c, &bookmarks[i])
		}
	}

	respondOK(c, gin.H{"bookmarks": bookmarks})
}

// refreshLastUpdated keeps the stored value when the lookup fails.
func (h *BookmarkHandler) refreshLastUpdated(c *gin.Context, b *models.Bookmark) {
	storyID := b.Book.ExternalStoryID
	if storyID == "" {
		return
	}

	updated, err := h.stories.LastUpdated(c.Request.Context(), storyID)
	if err != nil {
		log.Printf("Story feed lookup for %s failed, using stored value: %v", storyID, err)
		return
	}
	if b.LastUpdated != nil && b.LastUpdated.Equal(updated) {
		return
	}

	if err := h.db.Model(b).UpdateColumn("last_updated", updated).Error; err != nil {
		log.Printf("Failed to persist last_updated for bookmark %d: %v", b.ID, err)
	}
	b.LastUpdated = &updated
}

// Upsert 创建或更新书签
func (h *BookmarkHandler) Upsert(c *gin.Context) {
	user := currentUser(c)

	var req BookmarkRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	var book models.Book
	if err := h.db.First(&book, req.BookID).Error; err != nil {
		respondError(c, dbError(err, "book"))
		return
	}

	var bookmark models.Bookmark
	err := h.db.Where("user_id = ? AND book_id = ?", user.ID, book.ID).First(&bookmark).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		bookmark = models.Bookmark{UserID: user.ID, BookID: book.ID, Page: 1}
		if req.Page != nil {
			bookmark.Page = *req.Page
		}
		if req.Note != nil {
			bookmark.Note = *req.Note
		}
		if err := h.db.Create(&bookmark).Error; err != nil {
			respondError(c, err)
			return
		}
	case err != nil:
		respondError(c, err)
		return
	default:
		updates := map[string]interface{}{}
		if req.Page != nil {
			updates["page"] = *req.Page
		}
		if req.Note != nil {
			updates["note"] = *req.Note
		}
		if len(updates) > 0 {
			if err := h.db.Model(&bookmark).Updates(updates).Error; err != nil {
				respondError(c, err)
				return
			}
			if err := h.db.First(&bookmark, bookmark.ID).Error; err != nil {
				respondError(c, dbError(err, "bookmark"))
				return
			}
		}
	}

	bookmark.Book = book
	respondOK(c, gin.H{"bookmark": bookmark})
}

func (h *BookmarkHandler) Delete(c *gin.Context) {
	bookID, err := paramID(c, "book_id")
	if err != nil {
		respondError(c, err)
		return
	}

	res := h.db.Where("user_id = ? AND book_id = ?", currentUser(c).ID, bookID).Delete(&models.Bookmark{})
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, apperr.NotFound("bookmark not found"))
		return
	}
	respondOK(c, nil)
}
