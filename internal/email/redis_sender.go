package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tribalconversions/tribal-backend/internal/config"
)

// RedisSender implements the Sender interface by storing emails in Redis.
// Integration tooling polls the stored keys through the service API instead
// of scraping a real mailbox.
type RedisSender struct {
	client *redis.Client
	cfg    *config.Config
}

// NewRedisSender creates a new RedisSender.
func NewRedisSender(client *redis.Client, cfg *config.Config) Sender {
	return &RedisSender{
		client: client,
		cfg:    cfg,
	}
}

// emailKind classifies an outgoing email by its subject so test tooling can
// poll for a specific send. "Follow-up Day N" maps to "followup-day-N".
func emailKind(subject string) string {
	switch {
	case strings.HasPrefix(subject, "Follow-up Day "):
		day := strings.TrimPrefix(subject, "Follow-up Day ")
		return "followup-day-" + day
	case strings.Contains(subject, "Thanks for reaching out"):
		return "welcome"
	default:
		return "unknown"
	}
}

// Send stores a representation of the email in Redis instead of sending it.
// If `to` has multiple addresses, the first one is used for the key.
func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	primaryTo := ""
	if len(to) > 0 {
		primaryTo = to[0]
	}
	kind := emailKind(subject)

	emailData := map[string]interface{}{
		"to":      strings.Join(to, ", "),
		"from":    s.cfg.SmtpFromAddress,
		"subject": subject,
		"body":    string(rawMessage),
		"sent_at": time.Now().UTC().Format(time.RFC3339Nano),
		"kind":    kind,
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	key := fmt.Sprintf("mockemail:%s:%s", primaryTo, kind)
	ttl := 5 * time.Minute

	if err := s.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store mock email in Redis: %w", err)
	}

	log.Printf("RedisSender: stored mock email for %s (kind: %s)", primaryTo, kind)
	return nil
}
