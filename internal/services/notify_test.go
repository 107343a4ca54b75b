package services

import (
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"readshelf/internal/config"
	"readshelf/internal/models"
	"readshelf/internal/testutil"

	"gorm.io/gorm"
)

func setupNotifyDB(t *testing.T) *gorm.DB {
	return testutil.OpenDB(t,
		&models.User{}, &models.Book{}, &models.Comment{},
		&models.Notification{}, &models.NotificationSetting{},
	)
}

func createUser(t *testing.T, db *gorm.DB, name string, email *string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Password: "x", Role: models.RoleUser, Email: email}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestSettingsCreatedWithDefaults(t *testing.T) {
	db := setupNotifyDB(t)
	n := NewNotifier(db, nil, "")

	s, err := n.Settings(5)
	if err != nil {
		t.Fatal(err)
	}
	if !s.NotifyReplies || s.NotifyVotes || s.EmailReplies {
		t.Errorf("unexpected defaults %+v", s)
	}

	// Second read returns the stored row, not a new one.
	db.Model(s).Update("notify_votes", true)
	s2, err := n.Settings(5)
	if err != nil {
		t.Fatal(err)
	}
	if s2.ID != s.ID || !s2.NotifyVotes {
		t.Errorf("settings not persisted: %+v", s2)
	}
}

func TestNotifyReply(t *testing.T) {
	db := setupNotifyDB(t)
	n := NewNotifier(db, nil, "http://site")

	author := createUser(t, db, "author", nil)
	replier := createUser(t, db, "replier", nil)
	book := &models.Book{Title: "Dune", DriveID: "d1"}
	db.Create(book)
	parent := &models.Comment{BookID: book.ID, UserID: author.ID, Text: "first"}
	db.Create(parent)
	reply := &models.Comment{BookID: book.ID, UserID: replier.ID, ParentID: &parent.ID, Text: "second"}
	db.Create(reply)

	if err := n.NotifyReply(book, parent, reply, replier); err != nil {
		t.Fatal(err)
	}

	var list []models.Notification
	db.Where("user_id = ?", author.ID).Find(&list)
	if len(list) != 1 {
		t.Fatalf("got %d notifications, want 1", len(list))
	}
	if list[0].Type != models.NotificationTypeReplyComment || *list[0].CommentID != reply.ID {
		t.Errorf("unexpected notification %+v", list[0])
	}

	// Self replies and disabled settings stay silent.
	if err := n.NotifyReply(book, parent, parent, author); err != nil {
		t.Fatal(err)
	}
	db.Model(&models.NotificationSetting{}).Where("user_id = ?", author.ID).Update("notify_replies", false)
	if err := n.NotifyReply(book, parent, reply, replier); err != nil {
		t.Fatal(err)
	}
	var count int64
	db.Model(&models.Notification{}).Count(&count)
	if count != 1 {
		t.Errorf("notification count = %d, want 1", count)
	}
}

func TestNotifyReplyEmail(t *testing.T) {
	db := setupNotifyDB(t)

	var mu sync.Mutex
	var sent []string
	done := make(chan struct{}, 1)
	mail := NewMailService(config.SMTP{Host: "smtp", Port: "25", Username: "u", Password: "p", From: "bot@example.com"})
	mail.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		mu.Lock()
		sent = append(sent, string(msg))
		mu.Unlock()
		done <- struct{}{}
		return nil
	}
	n := NewNotifier(db, mail, "http://site/")

	email := "author@example.com"
	author := createUser(t, db, "author", &email)
	replier := createUser(t, db, "replier", nil)
	book := &models.Book{Title: "Dune"}
	db.Create(book)
	parent := &models.Comment{BookID: book.ID, UserID: author.ID, Text: "first"}
	db.Create(parent)
	reply := &models.Comment{BookID: book.ID, UserID: replier.ID, ParentID: &parent.ID, Text: "second"}
	db.Create(reply)

	settings := models.DefaultNotificationSetting(author.ID)
	settings.EmailReplies = true
	db.Create(&settings)

	if err := n.NotifyReply(book, parent, reply, replier); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("email was not sent")
	}
	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(sent[0], "To: author@example.com") || !strings.Contains(sent[0], "http://site/books/") {
		t.Errorf("unexpected message:\n%s", sent[0])
	}
}

func TestNotifyVoteRespectsSetting(t *testing.T) {
	db := setupNotifyDB(t)
	n := NewNotifier(db, nil, "")

	author := createUser(t, db, "author", nil)
	voter := createUser(t, db, "voter", nil)
	book := &models.Book{Title: "Dune"}
	db.Create(book)
	c := &models.Comment{BookID: book.ID, UserID: author.ID, Text: "hi"}
	db.Create(c)

	n.NotifyVote(c, voter)
	var count int64
	db.Model(&models.Notification{}).Count(&count)
	if count != 0 {
		t.Fatalf("votes are off by default, got %d notifications", count)
	}

	db.Model(&models.NotificationSetting{}).Where("user_id = ?", author.ID).Update("notify_votes", true)
	if err := n.NotifyVote(c, voter); err != nil {
		t.Fatal(err)
	}
	db.Model(&models.Notification{}).Count(&count)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
