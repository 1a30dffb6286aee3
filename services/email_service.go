package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"log"
	"net/smtp"
	"strings"

	"github.com/sahilchouksey/edu-platform-api/config"
)

// EmailService sends transactional email over SMTP with STARTTLS
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	appURL   string
}

// NewEmailService creates a new email service from the environment config
func NewEmailService(env *config.EnviornmentVariable) *EmailService {
	return &EmailService{
		host:     env.SMTP_HOST,
		port:     env.SMTP_PORT,
		username: env.SMTP_USERNAME,
		password: env.SMTP_PASSWORD,
		from:     env.SMTP_FROM,
		appURL:   env.APP_URL,
	}
}

// IsConfigured checks if SMTP credentials are present
func (e *EmailService) IsConfigured() bool {
	return e.username != "" && e.password != ""
}

// SendWelcomeEmail greets a newly created account
func (e *EmailService) SendWelcomeEmail(ctx context.Context, to, name string) error {
	body := e.layout("Welcome aboard", fmt.Sprintf(
		`<p>Hello %s,</p>
        <p>Your account is ready. Browse the catalog and pick your first course.</p>
        <p style="text-align: center;"><a href="%s/courses" class="button">Explore courses</a></p>`,
		html.EscapeString(displayName(name)), e.appURL))

	return e.send(ctx, to, "Welcome to the platform", body)
}

// SendEnrollmentEmail confirms an enrollment
func (e *EmailService) SendEnrollmentEmail(ctx context.Context, to, name, courseName string) error {
	body := e.layout("Enrollment confirmed", fmt.Sprintf(
		`<p>Hello %s,</p>
        <p>You are now enrolled in <strong>%s</strong>.</p>
        <p style="text-align: center;"><a href="%s/profile" class="button">Go to my courses</a></p>`,
		html.EscapeString(displayName(name)), html.EscapeString(courseName), e.appURL))

	return e.send(ctx, to, "Enrollment confirmed: "+courseName, body)
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "there"
	}
	return name
}

func (e *EmailService) layout(heading, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 24px; }
        .button { display: inline-block; padding: 12px 24px; background-color: #1d4ed8; color: #fff; text-decoration: none; border-radius: 6px; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <h2>%s</h2>
        %s
        <div class="footer"><a href="%s">%s</a></div>
    </div>
</body>
</html>`, html.EscapeString(heading), content, e.appURL, e.appURL)
}

// send delivers one HTML message. Without credentials the message is only logged.
func (e *EmailService) send(ctx context.Context, to, subject, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("recipient is empty")
	}
	if !e.IsConfigured() {
		log.Printf("[MAIL] SMTP not configured, skipping %q to %s", subject, to)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.WriteString(htmlBody)

	conn, err := smtp.Dial(fmt.Sprintf("%s:%d", e.host, e.port))
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(&tls.Config{ServerName: e.host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err := conn.Auth(smtp.PlainAuth("", e.username, e.password, e.host)); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := conn.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write([]byte(msg.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	conn.Quit()
	log.Printf("[MAIL] %q sent to %s", subject, to)
	return nil
}
