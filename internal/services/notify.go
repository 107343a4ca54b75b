package services

import (
	"fmt"
	"log"
	"strings"

	"readshelf/internal/models"

	"gorm.io/gorm"
)

// Notifier 根据用户偏好创建站内通知并发送邮件
type Notifier struct {
	db      *gorm.DB
	mail    *MailService
	siteURL string
}

func NewNotifier(db *gorm.DB, mail *MailService, siteURL string) *Notifier {
	return &Notifier{db: db, mail: mail, siteURL: strings.TrimSuffix(siteURL, "/")}
}

// Settings 获取用户的通知设置，不存在时按默认值创建
func (n *Notifier) Settings(userID uint) (*models.NotificationSetting, error) {
	var s models.NotificationSetting
	err := n.db.Where(models.NotificationSetting{UserID: userID}).
		Attrs(models.DefaultNotificationSetting(userID)).
		FirstOrCreate(&s).Error
	if err != nil {
		return nil, fmt.Errorf("load notification settings: %w", err)
	}
	return &s, nil
}

// NotifyReply tells the parent comment's author about a reply. Replying to
// yourself is silent.
func (n *Notifier) NotifyReply(book *models.Book, parent, reply *models.Comment, actor *models.User) error {
	if parent.UserID == actor.ID {
		return nil
	}

	settings, err := n.Settings(parent.UserID)
	if err != nil {
		return err
	}

	if settings.NotifyReplies {
		notification := models.Notification{
			UserID:    parent.UserID,
			ActorID:   &actor.ID,
			Type:      models.NotificationTypeReplyComment,
			Message:   fmt.Sprintf("%s replied to your comment on %s", actor.Username, book.Title),
			BookID:    &book.ID,
			CommentID: &reply.ID,
		}
		if err := n.db.Create(&notification).Error; err != nil {
			return fmt.Errorf("create reply notification: %w", err)
		}
	}

	if settings.EmailReplies && n.mail != nil && n.mail.Enabled {
		var receiver models.User
		if err := n.db.First(&receiver, parent.UserID).Error; err != nil {
			return fmt.Errorf("load reply receiver: %w", err)
		}
		if receiver.Email == nil || *receiver.Email == "" {
			log.Printf("User %d wants reply emails but has no address", receiver.ID)
			return nil
		}
		n.mail.SendReplyNotification(*receiver.Email, ReplyMail{
			Actor:        actor.Username,
			BookTitle:    book.Title,
			ReplyText:    reply.Text,
			OriginalText: parent.Text,
			Link:         fmt.Sprintf("%s/books/%d#comment-%d", n.siteURL, book.ID, reply.ID),
		})
	}
	return nil
}

// NotifyVote tells a comment's author about an upvote when they opted in.
func (n *Notifier) NotifyVote(comment *models.Comment, voter *models.User) error {
	if comment.UserID == voter.ID {
		return nil
	}

	settings, err := n.Settings(comment.UserID)
	if err != nil {
		return err
	}
	if !settings.NotifyVotes {
		return nil
	}

	notification := models.Notification{
		UserID:    comment.UserID,
		ActorID:   &voter.ID,
		Type:      models.NotificationTypeCommentVote,
		Message:   fmt.Sprintf("%s upvoted your comment", voter.Username),
		BookID:    &comment.BookID,
		CommentID: &comment.ID,
	}
	if err := n.db.Create(&notification).Error; err != nil {
		return fmt.Errorf("create vote notification: %w", err)
	}
	return nil
}
