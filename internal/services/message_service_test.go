package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tribalconversions/tribal-backend/internal/config"
	"github.com/tribalconversions/tribal-backend/internal/models"
)

func messageTestConfig() *config.Config {
	return &config.Config{
		SignOffName:    "Temple from Tribal Conversions",
		BookingLinkURL: "https://calendly.com/tribalconversions/30min",
	}
}

func TestCompose_UsesTrimmedGatewayText(t *testing.T) {
	gw := &stubGateway{response: "\n  Hi Jordan, thanks for reaching out!  \n"}
	svc := NewMessageService(messageTestConfig(), gw)

	msg := svc.Compose(context.Background(), models.LeadAttributes{Name: "Jordan"})
	assert.Equal(t, "Hi Jordan, thanks for reaching out!", msg)
}

func TestCompose_GatewayFailureUsesFallbackTemplate(t *testing.T) {
	gw := &stubGateway{err: errors.New("timeout")}
	svc := NewMessageService(messageTestConfig(), gw)

	msg := svc.Compose(context.Background(), models.LeadAttributes{Name: "Jordan"})
	assert.Equal(t, FallbackMessage, msg)
}

func TestCompose_BookingLinkAppendsToEitherPath(t *testing.T) {
	cfg := messageTestConfig()
	cfg.IncludeBookingLink = true

	// Primary path
	gw := &stubGateway{response: "Hi there!"}
	svc := NewMessageService(cfg, gw)
	msg := svc.Compose(context.Background(), models.LeadAttributes{})
	assert.True(t, strings.HasPrefix(msg, "Hi there!"))
	assert.Contains(t, msg, "You can book a time that works for you here:")
	assert.True(t, strings.HasSuffix(msg, cfg.BookingLinkURL))

	// Fallback path
	gw = &stubGateway{err: errors.New("down")}
	svc = NewMessageService(cfg, gw)
	msg = svc.Compose(context.Background(), models.LeadAttributes{})
	assert.True(t, strings.HasPrefix(msg, FallbackMessage))
	assert.True(t, strings.HasSuffix(msg, cfg.BookingLinkURL))
}

func TestCompose_NoBookingLinkWhenDisabled(t *testing.T) {
	gw := &stubGateway{response: "Hi there!"}
	svc := NewMessageService(messageTestConfig(), gw)

	msg := svc.Compose(context.Background(), models.LeadAttributes{})
	assert.Equal(t, "Hi there!", msg)
	assert.NotContains(t, msg, "calendly")
}
