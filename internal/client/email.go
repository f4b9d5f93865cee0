// SMTP client for transactional email (password reset, verification,
// welcome).
//
// Env:
//   - SMTP_HOST / SMTP_PORT: server to relay through (unset disables email)
//   - SMTP_USER / SMTP_PASSWORD: credentials for PLAIN auth over STARTTLS
//   - EMAILS_FROM_EMAIL / EMAILS_FROM_NAME: envelope sender
//   - FRONTEND_URL: base for the links embedded in the bodies

package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/niu-24-19333-stack/ScamShield/internal/config"
)

type EmailClient struct {
	host        string
	port        string
	user        string
	password    string
	fromEmail   string
	fromName    string
	frontendURL string
	dialTimeout time.Duration
}

func NewEmailClient(smtpCfg config.SMTPConfig, frontendURL string) *EmailClient {
	return &EmailClient{
		host:        smtpCfg.Host,
		port:        smtpCfg.Port,
		user:        smtpCfg.User,
		password:    smtpCfg.Password,
		fromEmail:   smtpCfg.FromEmail,
		fromName:    smtpCfg.FromName,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		dialTimeout: 10 * time.Second,
	}
}

func (c *EmailClient) IsConfigured() bool {
	return c.host != "" && c.user != "" && c.password != ""
}

func (c *EmailClient) SendPasswordReset(ctx context.Context, email, token, name string) error {
	resetURL := fmt.Sprintf("%s/reset-password.html?token=%s", c.frontendURL, token)
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"We received a request to reset your password. Open this link to choose a new one:\n\n"+
			"%s\n\n"+
			"The link expires in 1 hour. If you didn't request this, you can safely ignore this email.\n\n"+
			"- %s Team\n",
		displayName(name, email), resetURL, c.fromName)
	return c.send(ctx, email, "Reset Your "+c.fromName+" Password", body)
}

func (c *EmailClient) SendVerification(ctx context.Context, email, token, name string) error {
	verifyURL := fmt.Sprintf("%s/verify-email.html?token=%s", c.frontendURL, token)
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Welcome! Please verify your email address by opening this link:\n\n"+
			"%s\n\n"+
			"If you didn't create an account, you can safely ignore this email.\n\n"+
			"- %s Team\n",
		displayName(name, email), verifyURL, c.fromName)
	return c.send(ctx, email, "Verify Your "+c.fromName+" Account", body)
}

func (c *EmailClient) SendWelcome(ctx context.Context, email, name string) error {
	loginURL := c.frontendURL + "/login.html"
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Thanks for joining %s! Your account is ready.\n\n"+
			"Get started: %s\n\n"+
			"- %s Team\n",
		displayName(name, email), c.fromName, loginURL, c.fromName)
	return c.send(ctx, email, "Welcome to "+c.fromName+"!", body)
}

// send relays one message over STARTTLS. The dial is bounded by both the
// client timeout and the caller's context deadline.
func (c *EmailClient) send(ctx context.Context, to, subject, body string) error {
	if !c.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	addr := net.JoinHostPort(c.host, c.port)
	dialer := &net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	smtpClient, err := smtp.NewClient(conn, c.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake failed: %w", err)
	}
	defer smtpClient.Close()

	if ok, _ := smtpClient.Extension("STARTTLS"); ok {
		if err := smtpClient.StartTLS(&tls.Config{ServerName: c.host}); err != nil {
			return fmt.Errorf("starttls failed: %w", err)
		}
	}

	auth := smtp.PlainAuth("", c.user, c.password, c.host)
	if err := smtpClient.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}

	if err := smtpClient.Mail(c.fromEmail); err != nil {
		return err
	}
	if err := smtpClient.Rcpt(to); err != nil {
		return err
	}

	w, err := smtpClient.Data()
	if err != nil {
		return err
	}
	msg := c.buildMessage(to, subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return smtpClient.Quit()
}

func (c *EmailClient) buildMessage(to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", c.fromName, c.fromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.String()
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return strings.SplitN(email, "@", 2)[0]
}
