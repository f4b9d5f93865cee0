package client

import (
	"context"
	"strings"
	"testing"

	"github.com/niu-24-19333-stack/ScamShield/internal/config"
)

func testClient() *EmailClient {
	return NewEmailClient(config.SMTPConfig{
		Host:      "smtp.example.com",
		Port:      "587",
		User:      "mailer",
		Password:  "secret",
		FromEmail: "no-reply@example.com",
		FromName:  "ScamShield",
	}, "https://app.example.com/")
}

func TestIsConfigured(t *testing.T) {
	if !testClient().IsConfigured() {
		t.Fatalf("fully configured client must report configured")
	}

	unconfigured := NewEmailClient(config.SMTPConfig{}, "https://app.example.com")
	if unconfigured.IsConfigured() {
		t.Fatalf("empty config must report unconfigured")
	}
	if err := unconfigured.SendWelcome(context.Background(), "a@example.com", "A"); err == nil {
		t.Fatalf("sending without config must fail")
	}
}

func TestFrontendURLTrailingSlashTrimmed(t *testing.T) {
	c := testClient()
	if c.frontendURL != "https://app.example.com" {
		t.Fatalf("frontendURL = %q", c.frontendURL)
	}
}

func TestBuildMessage(t *testing.T) {
	c := testClient()
	msg := c.buildMessage("alice@example.com", "Hello", "line one\nline two\n")

	headerEnd := strings.Index(msg, "\r\n\r\n")
	if headerEnd < 0 {
		t.Fatalf("message must separate headers from body with a blank line")
	}
	headers := msg[:headerEnd]
	body := msg[headerEnd+4:]

	for _, want := range []string{
		"From: ScamShield <no-reply@example.com>",
		"To: alice@example.com",
		"Subject: Hello",
		"Content-Type: text/plain; charset=utf-8",
	} {
		if !strings.Contains(headers, want) {
			t.Fatalf("headers missing %q:\n%s", want, headers)
		}
	}

	if strings.Contains(body, "\n") && !strings.Contains(body, "\r\n") {
		t.Fatalf("body must use CRLF line endings")
	}
	if !strings.Contains(body, "line one\r\nline two") {
		t.Fatalf("body = %q", body)
	}
}

func TestDisplayName(t *testing.T) {
	if got := displayName("Alice", "alice@example.com"); got != "Alice" {
		t.Fatalf("displayName = %q", got)
	}
	if got := displayName("", "alice@example.com"); got != "alice" {
		t.Fatalf("fallback displayName = %q", got)
	}
}
