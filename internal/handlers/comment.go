package handlers

import (
	"log"
	"unicode/utf8"

	"readshelf/internal/apperr"
	"readshelf/internal/models"
	"readshelf/internal/services"
	"readshelf/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxCommentLength = 5000

type CommentHandler struct {
	db       *gorm.DB
	notifier *services.Notifier
}

func NewCommentHandler(db *gorm.DB, notifier *services.Notifier) *CommentHandler {
	return &CommentHandler{db: db, notifier: notifier}
}

// cleanCommentText strips markup and enforces the length limit.
func cleanCommentText(raw string) (string, error) {
	text := utils.StripTags(raw)
	if text == "" {
		return "", apperr.Validation("comment text is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return "", apperr.Validation("comment text must be at most %d characters", maxCommentLength)
	}
	return text, nil
}

// List 返回书籍的评论树
func (h *CommentHandler) List(c *gin.Context) {
	bookID, ok := utils.ParseID(c.Query("book_id"))
	if !ok {
		respondError(c, apperr.Validation("book_id is required"))
		return
	}

	var comments []models.Comment
	err := h.db.Preload("User").
		Where("book_id = ?", bookID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		respondError(c, err)
		return
	}

	tree := services.BuildCommentTree(comments)
	if c.Query("format") == "html" {
		services.RenderCommentHTML(tree)
	}
	respondOK(c, gin.H{"comments": tree})
}

func (h *CommentHandler) Create(c *gin.Context) {
	user := currentUser(c)

	var req AddCommentRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	text, err := cleanCommentText(req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	var book models.Book
	if err := h.db.First(&book, req.BookID).Error; err != nil {
		respondError(c, dbError(err, "book"))
		return
	}

	var parent *models.Comment
	if req.ParentID != nil {
		var p models.Comment
		if err := h.db.First(&p, *req.ParentID).Error; err != nil {
			respondError(c, dbError(err, "parent comment"))
			return
		}
		if p.Deleted {
			respondError(c, apperr.NotFound("parent comment not found"))
			return
		}
		if p.BookID != book.ID {
			respondError(c, apperr.Validation("parent comment belongs to another book"))
			return
		}
		parent = &p
	}

	comment := models.Comment{
		BookID:   book.ID,
		UserID:   user.ID,
		ParentID: req.ParentID,
		Text:     text,
	}
	if err := h.db.Create(&comment).Error; err != nil {
		respondError(c, err)
		return
	}
	comment.User = *user

	if parent != nil {
		if err := h.notifier.NotifyReply(&book, parent, &comment, user); err != nil {
			log.Printf("Reply notification for comment %d failed: %v", comment.ID, err)
		}
	}

	node := services.BuildCommentTree([]models.Comment{comment})[0]
	respondOK(c, gin.H{"comment": node})
}

// loadOwned loads a live comment and checks that the current user may
// change it.
func (h *CommentHandler) loadOwned(c *gin.Context, allowAdmin bool) (*models.Comment, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := h.db.Preload("User").First(&comment, id).Error; err != nil {
		return nil, dbError(err, "comment")
	}
	if comment.Deleted {
		return nil, apperr.NotFound("comment not found")
	}

	user := currentUser(c)
	if comment.UserID != user.ID && !(allowAdmin && user.IsAdmin()) {
		return nil, apperr.Forbidden("not allowed to modify this comment")
	}
	return &comment, nil
}

func (h *CommentHandler) Edit(c *gin.Context) {
	comment, err := h.loadOwned(c, false)
	if err != nil {
		respondError(c, err)
		return
	}

	var req EditCommentRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	text, err := cleanCommentText(req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.db.Model(comment).Updates(map[string]interface{}{"text": text, "edited": true}).Error; err != nil {
		respondError(c, err)
		return
	}
	comment.Text = text
	comment.Edited = true

	node := services.BuildCommentTree([]models.Comment{*comment})[0]
	respondOK(c, gin.H{"comment": node})
}

// Delete 软删除评论，行数据保留
func (h *CommentHandler) Delete(c *gin.Context) {
	comment, err := h.loadOwned(c, true)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.db.Model(comment).Update("deleted", true).Error; err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}
