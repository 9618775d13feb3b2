package email

import (
	"fmt"
	"strings"
	"time"
)

// BuildRawMessage assembles a complete plain-text email with headers.
// Note: Proper MIME encoding for HTML or attachments would be more complex;
// lead follow-ups are plain text only.
func BuildRawMessage(from, to, subject, body string) []byte {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n") // End of headers
	sb.WriteString(body)
	sb.WriteString("\r\n")
	return []byte(sb.String())
}
