package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"

	"readshelf/internal/config"
)

var replyTemplate = template.Must(template.New("reply").Parse(`<p>{{.Actor}} replied to your comment on <b>{{.BookTitle}}</b>:</p>
<blockquote>{{.ReplyText}}</blockquote>
<p>Your comment:</p>
<blockquote>{{.OriginalText}}</blockquote>
<p><a href="{{.Link}}">Open the book</a></p>
`))

type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool

	// send is smtp.SendMail outside of tests
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailService(cfg config.SMTP) *MailService {
	enabled := cfg.Enabled()
	if !enabled {
		log.Println("⚠️ MailService disabled: Missing SMTP environment variables.")
	}

	return &MailService{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		Enabled:  enabled,
		send:     smtp.SendMail,
	}
}

var headerBreaks = strings.NewReplacer("\r", " ", "\n", " ")

func (s *MailService) buildMessage(to []string, subject, body string) []byte {
	subject = headerBreaks.Replace(subject)
	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: Readshelf <%s>\r\n"+
		"Subject: %s\r\n"+
		"%s\r\n%s", strings.Join(to, ","), s.From, subject, mime, body))
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

		err := s.send(addr, auth, s.From, to, s.buildMessage(to, subject, body))
		if err != nil {
			log.Printf("❌ Failed to send email to %v: %v", to, err)
		} else {
			log.Printf("✅ Email sent to %v: %s", to, subject)
		}
	}()
}

// ReplyMail is the data rendered into a reply notification email.
type ReplyMail struct {
	Actor        string
	BookTitle    string
	ReplyText    string
	OriginalText string
	Link         string
}

func renderReplyMail(data ReplyMail) (string, error) {
	var buf bytes.Buffer
	if err := replyTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute reply template: %w", err)
	}
	return buf.String(), nil
}

func (s *MailService) SendReplyNotification(email string, data ReplyMail) {
	body, err := renderReplyMail(data)
	if err != nil {
		log.Printf("Error rendering reply email: %v", err)
		return
	}
	s.sendAsync([]string{email}, "💬 "+data.Actor+" replied to your comment on "+data.BookTitle, body)
}
