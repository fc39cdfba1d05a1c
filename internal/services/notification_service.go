// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/workbridge/workbridge-backend/internal/config"
	"github.com/workbridge/workbridge-backend/internal/lifecycle"
	"github.com/workbridge/workbridge-backend/internal/models"
)

// NotificationService is the best-effort side channel behind the lifecycle
// coordinator. It writes an in-app notification row and, when SMTP is
// configured, sends an email. Failures are logged and swallowed: a lost
// notification never fails the operation that triggered it.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// Notify implements lifecycle.Notifier.
func (s *NotificationService) Notify(userID uuid.UUID, eventType string, payload map[string]interface{}) {
	title, message := s.describeEvent(eventType, payload)

	notification := &models.Notification{
		UserID:    userID,
		EventType: eventType,
		Title:     title,
		Message:   message,
		Payload:   models.JSONB(payload),
	}
	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithField("event_type", eventType).Error("Failed to create notification")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Notification recipient not found")
		return
	}

	tmpl := s.getEmailTemplate(eventType)
	data := map[string]interface{}{
		"Username":     user.Username,
		"Title":        title,
		"Message":      message,
		"DashboardURL": fmt.Sprintf("%s/applications", s.config.Frontend.BaseURL),
	}
	for k, v := range payload {
		data[k] = v
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).WithField("event_type", eventType).Error("Failed to render email template")
		return
	}

	if err := s.sendEmail(user.Email, tmpl.Subject, body); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event_type": eventType,
			"user_id":    userID,
		}).Error("Failed to send notification email")
	}
}

func (s *NotificationService) describeEvent(eventType string, payload map[string]interface{}) (string, string) {
	switch eventType {
	case lifecycle.EventApplicationSubmitted:
		return "New application received", "A professional has applied to your project."
	case lifecycle.EventApplicationUnderReview:
		return "Application under review", "The client is reviewing your application."
	case lifecycle.EventApplicationAccepted:
		return "Application accepted", "Congratulations! Your application was accepted and the project has been assigned to you."
	case lifecycle.EventApplicationRejected:
		reason, _ := payload["reason"].(string)
		return "Application not selected", fmt.Sprintf("Your application was not selected. Reason: %s", reason)
	case lifecycle.EventApplicationWithdrawn:
		return "Application withdrawn", "A professional has withdrawn their application from your project."
	default:
		return "Notification", "You have a new notification."
	}
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, in-app notification only
		logrus.WithField("to", to).Debugf("Email skipped: %s", subject)
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(eventType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		lifecycle.EventApplicationSubmitted: {
			Subject: "New application on your project",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Username}},</h2>
	<p>A professional has applied to your project.</p>
	<a href="{{.DashboardURL}}">Review applications</a>
	<p>Best regards,<br>WorkBridge Team</p>
</body>
</html>`,
		},
		lifecycle.EventApplicationAccepted: {
			Subject: "Your application was accepted",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Congratulations {{.Username}}!</h2>
	<p>Your application was accepted and the project has been assigned to you.</p>
	<a href="{{.DashboardURL}}">View details</a>
	<p>Best regards,<br>WorkBridge Team</p>
</body>
</html>`,
		},
		lifecycle.EventApplicationRejected: {
			Subject: "Update on your application",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Username}},</h2>
	<p>{{.Message}}</p>
	<p>Best regards,<br>WorkBridge Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[eventType]; exists {
		return tmpl
	}

	// Default template
	return EmailTemplate{
		Subject: "WorkBridge notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
