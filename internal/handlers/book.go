package handlers

import (
	"strings"

	"readshelf/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BookHandler serves the catalog. Writes are admin only.
type BookHandler struct {
	db *gorm.DB
}

func NewBookHandler(db *gorm.DB) *BookHandler {
	return &BookHandler{db: db}
}

func (h *BookHandler) List(c *gin.Context) {
	var books []models.Book
	if err := h.db.Order("id ASC").Find(&books).Error; err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"books": books})
}

func (h *BookHandler) load(c *gin.Context) (*models.Book, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	var book models.Book
	if err := h.db.First(&book, id).Error; err != nil {
		return nil, dbError(err, "book")
	}
	return &book, nil
}

func (h *BookHandler) Get(c *gin.Context) {
	book, err := h.load(c)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"book": book})
}

func (h *BookHandler) Create(c *gin.Context) {
	var req BookRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	book := models.Book{
		DriveID:         strings.TrimSpace(req.DriveID),
		Title:           strings.TrimSpace(req.Title),
		ExternalStoryID: strings.TrimSpace(req.ExternalStoryID),
	}
	if err := h.db.Create(&book).Error; err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"book": book})
}

func (h *BookHandler) Update(c *gin.Context) {
	book, err := h.load(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req BookRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	err = h.db.Model(book).Updates(map[string]interface{}{
		"drive_id":          strings.TrimSpace(req.DriveID),
		"title":             strings.TrimSpace(req.Title),
		"external_story_id": strings.TrimSpace(req.ExternalStoryID),
	}).Error
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.db.First(book, book.ID).Error; err != nil {
		respondError(c, dbError(err, "book"))
		return
	}
	respondOK(c, gin.H{"book": book})
}

// Delete removes the catalog row only; the file in Drive is untouched.
func (h *BookHandler) Delete(c *gin.Context) {
	book, err := h.load(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.db.Delete(book).Error; err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}
