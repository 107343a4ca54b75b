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

type VoteHandler struct {
	db       *gorm.DB
	notifier *services.Notifier
}

func NewVoteHandler(db *gorm.DB, notifier *services.Notifier) *VoteHandler {
	return &VoteHandler{db: db, notifier: notifier}
}

func voteColumn(value int) string {
	if value > 0 {
		return "upvotes"
	}
	return "downvotes"
}

func adjust(tx *gorm.DB, commentID uint, value, delta int) error {
	col := voteColumn(value)
	return tx.Model(&models.Comment{}).Where("id = ?", commentID).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta)).Error
}

// Vote 给评论投票。重复同一方向取消投票，反方向则改票
func (h *VoteHandler) Vote(c *gin.Context) {
	user := currentUser(c)

	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req VoteRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	var comment models.Comment
	userVote := 0
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&comment, id).Error; err != nil {
			return dbError(err, "comment")
		}
		if comment.Deleted {
			return apperr.NotFound("comment not found")
		}

		var existing models.CommentVote
		err := tx.Where("user_id = ? AND comment_id = ?", user.ID, comment.ID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.CommentVote{UserID: user.ID, CommentID: comment.ID, Value: req.Value}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			if err := adjust(tx, comment.ID, req.Value, 1); err != nil {
				return err
			}
			userVote = req.Value
		case err != nil:
			return err
		case existing.Value == req.Value:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if err := adjust(tx, comment.ID, req.Value, -1); err != nil {
				return err
			}
		default:
			previous := existing.Value
			if err := tx.Model(&existing).Update("value", req.Value).Error; err != nil {
				return err
			}
			if err := adjust(tx, comment.ID, previous, -1); err != nil {
				return err
			}
			if err := adjust(tx, comment.ID, req.Value, 1); err != nil {
				return err
			}
			userVote = req.Value
		}

		return tx.First(&comment, comment.ID).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if userVote > 0 {
		if err := h.notifier.NotifyVote(&comment, user); err != nil {
			log.Printf("Vote notification for comment %d failed: %v", comment.ID, err)
		}
	}

	respondOK(c, gin.H{
		"upvotes":   comment.Upvotes,
		"downvotes": comment.Downvotes,
		"user_vote": userVote,
	})
}
