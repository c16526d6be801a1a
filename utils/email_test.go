package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	message := string(BuildMessage("noreply@effido.app", "user@example.com", "Verify your email address", "<p>hello</p>"))

	assert.Contains(t, message, "Subject: Verify your email address\r\n")
	assert.Contains(t, message, "From: noreply@effido.app\r\n")
	assert.Contains(t, message, "To: user@example.com\r\n")
	assert.Contains(t, message, "Content-Type: text/html")
	assert.Contains(t, message, "<p>hello</p>")
}
