package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"catalogsite/internal/config"
)

func TestSend_NotConfigured(t *testing.T) {
	err := NewSender(config.EmailConfig{}).Send(context.Background(), "a@example.com", "hi", "text", "")
	assert.ErrorContains(t, err, "not configured")
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("site@example.com", "sales@example.com", "新询价 from Ann", "", "<p>Hello</p>"))

	assert.Contains(t, msg, "From: site@example.com\r\n")
	assert.Contains(t, msg, "To: sales@example.com\r\n")
	assert.Contains(t, msg, "Subject: =?utf-8?q?")
	assert.Contains(t, msg, "Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n<p>Hello</p>")

	plain := string(buildMessage("site@example.com", "ann@example.com", "Thanks", "Plain body", "  "))
	assert.Contains(t, plain, "Subject: Thanks\r\n")
	assert.True(t, strings.HasSuffix(plain, "Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\nPlain body"))
}
