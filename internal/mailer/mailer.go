package mailer

import (
	"fmt"
	"time"

	"leasing-portal/pkg/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional notification emails over SMTP. When no SMTP
// credentials are configured it becomes a logged no-op; signups must never
// fail because mail could not be sent.
type Mailer struct {
	cfg *config.SMTPConfig
	log *zap.Logger
}

// New creates a Mailer
func New(cfg *config.SMTPConfig, log *zap.Logger) *Mailer {
	m := &Mailer{cfg: cfg, log: log}
	if !m.Enabled() {
		log.Warn("SMTP credentials not configured, email notifications disabled")
	}
	return m
}

// Enabled reports whether sending is configured
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.User != ""
}

func (m *Mailer) send(to, subject, htmlBody string) {
	if !m.Enabled() {
		m.log.Warn("SMTP not configured, skipping email", zap.String("subject", subject))
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.Sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		m.log.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return
	}
	m.log.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
}

// SendNewUserNotification alerts the operator inbox about a signup
func (m *Mailer) SendNewUserNotification(userEmail, userName string) {
	registeredAt := time.Now().Format("Monday, January 2, 2006 3:04 PM MST")
	body := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; color: #333;">
  <h1 style="color: #0EA5E9;">New User Registration</h1>
  <p>A new user has just signed up for Leo Voice Agent.</p>
  <div style="background: #f8f9fa; padding: 20px; border-left: 4px solid #38BDF8;">
    <p><strong>Name:</strong> %s</p>
    <p><strong>Email:</strong> %s</p>
    <p><strong>Registration Time:</strong> %s</p>
  </div>
  <p>This user will need to be assigned to an organization to access the dashboard.</p>
</body></html>`, userName, userEmail, registeredAt)

	m.send(m.cfg.NotifyTo, "New User Registration - Leo Voice Agent", body)
}

// SendWelcomeEmail greets the new user directly
func (m *Mailer) SendWelcomeEmail(userEmail, userName string) {
	body := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; color: #333;">
  <h1 style="color: #0EA5E9;">Welcome to Leo Voice Agent!</h1>
  <p>Hi %s,</p>
  <p>Thanks for signing up! We're excited to have you on board.</p>
  <p>Leo Voice Agent helps you manage your properties and track voice interactions with potential tenants.</p>
  <p style="color: #64748B;">If you have any questions, feel free to reach out to our support team.</p>
</body></html>`, userName)

	m.send(userEmail, "Welcome to Leo Voice Agent!", body)
}
