package services

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Notifier abstracts the outbound channels used by the scheduled jobs.
// Both methods report delivery success; they never block a caller on retry.
type Notifier interface {
	SendEmail(to, subject, htmlBody string) bool
	SendChatMessage(text string) bool
}

// NotificationService sends email via SendGrid and chat messages via a
// webhook. Either channel is silently disabled when unconfigured.
type NotificationService struct {
	sendgridKey string
	fromEmail   string
	fromName    string
	chatWebhook string
	httpClient  *http.Client
}

// NewNotificationService creates a notification service from environment config
func NewNotificationService() *NotificationService {
	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "ParkHub"
	}

	return &NotificationService{
		sendgridKey: os.Getenv("SENDGRID_API_KEY"),
		fromEmail:   os.Getenv("SENDGRID_FROM_EMAIL"),
		fromName:    fromName,
		chatWebhook: os.Getenv("CHAT_WEBHOOK_URL"),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// EmailEnabled reports whether the email channel is configured
func (s *NotificationService) EmailEnabled() bool {
	return s.sendgridKey != "" && s.fromEmail != ""
}

// ChatEnabled reports whether the chat webhook is configured
func (s *NotificationService) ChatEnabled() bool {
	return s.chatWebhook != ""
}

// SendEmail sends an HTML email via SendGrid
func (s *NotificationService) SendEmail(to, subject, htmlBody string) bool {
	if !s.EmailEnabled() {
		return false
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), "", htmlBody)

	client := sendgrid.NewSendClient(s.sendgridKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("❌ SendGrid error sending to %s: %v", to, err)
		return false
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("❌ SendGrid returned status %d for %s", resp.StatusCode, to)
		return false
	}

	log.Printf("✅ Email sent to %s (%s)", to, subject)
	return true
}

// SendChatMessage posts a text message to the configured chat webhook
func (s *NotificationService) SendChatMessage(text string) bool {
	if !s.ChatEnabled() {
		return false
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return false
	}

	resp, err := s.httpClient.Post(s.chatWebhook, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("❌ Chat webhook error: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ Chat webhook returned status %d", resp.StatusCode)
		return false
	}
	return true
}
