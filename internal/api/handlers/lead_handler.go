package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tribalconversions/tribal-backend/internal/config"
	"github.com/tribalconversions/tribal-backend/internal/email"
	"github.com/tribalconversions/tribal-backend/internal/models"
	"github.com/tribalconversions/tribal-backend/internal/services"
)

// WelcomeSubject is the subject line of the immediate post-submission email.
const WelcomeSubject = "Thanks for reaching out! Here's the next step"

// LeadHandler serves lead intake and the operator read endpoints.
type LeadHandler struct {
	cfg        *config.Config
	scoreSvc   services.IScoreService
	messageSvc services.IMessageService
	leadSvc    services.ILeadService
	sender     email.Sender
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(cfg *config.Config, scoreSvc services.IScoreService, messageSvc services.IMessageService, leadSvc services.ILeadService, sender email.Sender) *LeadHandler {
	return &LeadHandler{
		cfg:        cfg,
		scoreSvc:   scoreSvc,
		messageSvc: messageSvc,
		leadSvc:    leadSvc,
		sender:     sender,
	}
}

// Submit handles POST /submit. Scoring and composition never fail (they fall
// back internally); storing the lead is the one must-succeed step. The
// immediate email is attempted once and its outcome reported as email_sent,
// never as a request failure.
func (h *LeadHandler) Submit(c *gin.Context) {
	var attrs models.LeadAttributes
	if err := c.ShouldBindJSON(&attrs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	score := h.scoreSvc.Score(ctx, attrs)
	message := h.messageSvc.Compose(ctx, attrs)

	lead, err := h.leadSvc.CreateLeadWithFollowups(ctx, attrs, score, message)
	if err != nil {
		log.Printf("Failed to store lead for %s: %v", attrs.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store lead"})
		return
	}

	emailSent := false
	if attrs.Email != "" {
		raw := email.BuildRawMessage(h.cfg.SmtpFromAddress, attrs.Email, WelcomeSubject, message)
		if err := h.sender.Send(ctx, []string{attrs.Email}, WelcomeSubject, raw); err != nil {
			log.Printf("Immediate email to %s failed: %v", attrs.Email, err)
		} else {
			emailSent = true
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Lead received!",
		"score":      lead.Score,
		"followup":   lead.Message,
		"email_sent": emailSent,
	})
}

// ListLeads handles GET /leads: every stored lead, highest score first.
func (h *LeadHandler) ListLeads(c *gin.Context) {
	leads, err := h.leadSvc.ListByScoreDesc(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list leads: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list leads"})
		return
	}
	c.JSON(http.StatusOK, leads)
}

// AnalyticsSummary handles GET /analytics/summary.
func (h *LeadHandler) AnalyticsSummary(c *gin.Context) {
	summary, err := h.leadSvc.AnalyticsSummary(c.Request.Context())
	if err != nil {
		log.Printf("Failed to build analytics summary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build analytics summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// AnalyticsTimeline handles GET /analytics/timeline.
func (h *LeadHandler) AnalyticsTimeline(c *gin.Context) {
	timeline, err := h.leadSvc.AnalyticsTimeline(c.Request.Context())
	if err != nil {
		log.Printf("Failed to build analytics timeline: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build analytics timeline"})
		return
	}
	c.JSON(http.StatusOK, timeline)
}
