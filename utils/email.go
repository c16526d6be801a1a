package utils

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/sony/gobreaker"
)

// Mailer sends transactional mail over SMTP. Deliveries go through a
// circuit breaker so a flapping SMTP server does not hold every request
// hostage for the full dial timeout.
type Mailer struct {
	breaker *gobreaker.CircuitBreaker
}

func NewMailer(breaker *gobreaker.CircuitBreaker) *Mailer {
	return &Mailer{breaker: breaker}
}

// Send delivers a single HTML email to the given address.
func (m *Mailer) Send(to, subject, body string) error {
	from := os.Getenv("EMAIL_FROM")
	password := os.Getenv("EMAIL_PASSWORD")

	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		smtpHost = "smtp.gmail.com"
	}
	smtpPort := os.Getenv("SMTP_PORT")
	if smtpPort == "" {
		smtpPort = "587"
	}

	if from == "" || password == "" {
		return fmt.Errorf("EMAIL_FROM or EMAIL_PASSWORD is not set")
	}

	message := BuildMessage(from, to, subject, body)

	auth := smtp.PlainAuth("", from, password, smtpHost)

	_, err := m.breaker.Execute(func() (interface{}, error) {
		return nil, smtp.SendMail(smtpHost+":"+smtpPort, auth, from, []string{to}, message)
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}

// BuildMessage assembles the raw SMTP payload for an HTML email.
func BuildMessage(from, to, subject, body string) []byte {
	return []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n" +
		body + "\r\n")
}

func baseURL() string {
	if url := os.Getenv("APP_BASE_URL"); url != "" {
		return url
	}
	return "http://localhost:3000"
}

// SendVerificationEmail mails the address-confirmation link issued at
// registration.
func (m *Mailer) SendVerificationEmail(to, token string) error {
	verificationURL := fmt.Sprintf("%s/verify-email/%s", baseURL(), token)

	subject := "Verify your email address"
	body := fmt.Sprintf(
		"<p>Please verify your email address by clicking the link below:</p>"+
			"<a href=\"%s\">%s</a>"+
			"<p>This link expires in 24 hours.</p>"+
			"<p>If you did not request this, you can ignore this email.</p>",
		verificationURL, verificationURL)

	return m.Send(to, subject, body)
}

// SendPasswordResetEmail mails the reset link for a forgotten password.
func (m *Mailer) SendPasswordResetEmail(to, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password/%s", baseURL(), token)

	subject := "Password reset"
	body := fmt.Sprintf(
		"<p>You requested a password reset.</p>"+
			"<p>Click the link below to choose a new password:</p>"+
			"<a href=\"%s\">%s</a>"+
			"<p>If you did not request this, you can ignore this email.</p>",
		resetURL, resetURL)

	return m.Send(to, subject, body)
}
