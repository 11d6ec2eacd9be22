// Package notify delivers workflow emails: approval and rejection
// notices, reset codes, and registration codes.
package notify

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"realty-service/internal/config"
	"realty-service/internal/util"
)

// Notifier abstracts mail delivery so services can be tested without a
// mail server.
type Notifier interface {
	SendAgentApproved(to, fullName string) error
	SendAgentRejected(to, fullName string) error
	SendPropertyApproved(to, title string) error
	SendPropertyRejected(to, title string) error
	SendPropertySubmitted(reviewer, title, agentID string) error
	SendPasswordResetOTP(to, code string) error
	SendRegistrationOTP(to, code string) error
}

// EmailSender sends mail over an implicit-TLS SMTP connection.
type EmailSender struct {
	host     string
	port     string
	username string
	password string
	from     string
	reviewer string
}

func NewEmailSender(cfg *config.Config) *EmailSender {
	return &EmailSender{
		host:     cfg.SMTP.Host,
		port:     cfg.SMTP.Port,
		username: cfg.SMTP.Username,
		password: cfg.SMTP.Password,
		from:     cfg.SMTP.From,
		reviewer: cfg.SMTP.ReviewerAddress,
	}
}

func (e *EmailSender) SendAgentApproved(to, fullName string) error {
	subject := "Your agent account has been approved"
	body := fmt.Sprintf(
		"Dear %s,\r\n\r\nYour agent registration has been approved. You can now sign in and list properties.\r\n",
		fullName)
	return e.send(to, subject, body)
}

func (e *EmailSender) SendAgentRejected(to, fullName string) error {
	subject := "Your agent registration was not approved"
	body := fmt.Sprintf(
		"Dear %s,\r\n\r\nWe are sorry to inform you that your agent registration was rejected.\r\n",
		fullName)
	return e.send(to, subject, body)
}

func (e *EmailSender) SendPropertyApproved(to, title string) error {
	subject := "Your property listing has been approved"
	body := fmt.Sprintf(
		"Your property %q has been approved and is now live.\r\n", title)
	return e.send(to, subject, body)
}

func (e *EmailSender) SendPropertyRejected(to, title string) error {
	subject := "Your property listing was rejected"
	body := fmt.Sprintf(
		"Your property %q did not pass review and has been rejected.\r\n", title)
	return e.send(to, subject, body)
}

func (e *EmailSender) SendPropertySubmitted(reviewer, title, agentID string) error {
	if reviewer == "" {
		reviewer = e.reviewer
	}
	subject := "New property awaiting review"
	body := fmt.Sprintf(
		"Agent %s submitted a new property %q. It is waiting for review.\r\n",
		agentID, title)
	return e.send(reviewer, subject, body)
}

func (e *EmailSender) SendPasswordResetOTP(to, code string) error {
	subject := "Your password reset code"
	body := fmt.Sprintf(
		"Your one-time password reset code is %s. It expires in 5 minutes.\r\n", code)
	return e.send(to, subject, body)
}

func (e *EmailSender) SendRegistrationOTP(to, code string) error {
	subject := "Verify your account"
	body := fmt.Sprintf(
		"Your registration verification code is %s. It expires in 5 minutes.\r\n", code)
	return e.send(to, subject, body)
}

func (e *EmailSender) send(to, subject, body string) error {
	serverAddr := e.host + ":" + e.port

	tlsConfig := &tls.Config{ServerName: e.host}
	conn, err := tls.Dial("tcp", serverAddr, tlsConfig)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", e.username, e.password, e.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth failed: %w", err)
	}

	if err := client.Mail(e.from); err != nil {
		return fmt.Errorf("SMTP MAIL failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA failed: %w", err)
	}

	msg := strings.Join([]string{
		"From: " + e.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write mail body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish mail body: %w", err)
	}

	util.Debug("Email sent", zap.String("subject", subject))
	return nil
}
