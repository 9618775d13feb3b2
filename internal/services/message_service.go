package services

import (
	"context"
	"log"
	"strings"

	"github.com/tribalconversions/tribal-backend/internal/config"
	"github.com/tribalconversions/tribal-backend/internal/gateway"
	"github.com/tribalconversions/tribal-backend/internal/models"
	"github.com/tribalconversions/tribal-backend/internal/prompts"
)

// IMessageService defines the interface for composing lead follow-up messages.
type IMessageService interface {
	Compose(ctx context.Context, attrs models.LeadAttributes) string
}

// FallbackMessage is sent when the model cannot produce a personalized one.
const FallbackMessage = "Thanks for reaching out! We'll be in touch with next steps shortly."

// messageService implements IMessageService.
type messageService struct {
	cfg     *config.Config
	gateway gateway.Gateway
}

// NewMessageService creates a new MessageService.
func NewMessageService(cfg *config.Config, gw gateway.Gateway) IMessageService {
	return &messageService{cfg: cfg, gateway: gw}
}

// Compose produces the personalized follow-up text for a lead, preferring
// the model and silently falling back to the fixed template on any gateway
// failure. When configured, the booking-link call to action is appended to
// either path's result. Never errors.
func (s *messageService) Compose(ctx context.Context, attrs models.LeadAttributes) string {
	message := FallbackMessage

	prompt, err := prompts.RenderFollowup(attrs, s.cfg.SignOffName)
	if err != nil {
		log.Printf("Failed to render follow-up prompt: %v. Using fallback message.", err)
	} else if generated, genErr := s.gateway.Generate(ctx, prompt); genErr != nil {
		log.Printf("Model message generation failed: %v. Using fallback message.", genErr)
	} else {
		message = strings.TrimSpace(generated)
	}

	if s.cfg.IncludeBookingLink {
		message += "\n\n🗓️ You can book a time that works for you here:\n" + s.cfg.BookingLinkURL
	}
	return message
}
