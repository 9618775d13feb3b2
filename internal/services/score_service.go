package services

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/tribalconversions/tribal-backend/internal/config"
	"github.com/tribalconversions/tribal-backend/internal/gateway"
	"github.com/tribalconversions/tribal-backend/internal/models"
	"github.com/tribalconversions/tribal-backend/internal/prompts"
)

// IScoreService defines the interface for lead qualification scoring.
type IScoreService interface {
	Score(ctx context.Context, attrs models.LeadAttributes) int
}

// Weight tables for the deterministic fallback path. This table is the
// single source of truth for qualification weighting; the model-driven path
// is asked to approximate the same intent. Values absent from a table
// contribute 0.
var (
	budgetWeights      = map[string]int{"<100k": 10, "100k-500k": 30, "500k+": 50}
	timelineWeights    = map[string]int{"6+": 10, "1-3": 25, "asap": 40}
	interestWeights    = map[string]int{"low": 10, "medium": 25, "high": 40}
	creditScoreWeights = map[string]int{"poor": 0, "fair": 10, "good": 25, "excellent": 40}
	downPaymentWeights = map[string]int{"<5%": 0, "5-10%": 10, "10-20%": 25, "20%+": 40}
	motivationWeights  = map[string]int{"low": 0, "medium": 20, "high": 40}
	conditionWeights   = map[string]int{"bad": 0, "average": 10, "good": 20, "excellent": 30}
	livingWeights      = map[string]int{"yes": 10, "no": 5}
)

// noAgentBonus applies when the lead is not already working with an agent.
const noAgentBonus = 10

// scoreService implements IScoreService.
type scoreService struct {
	cfg     *config.Config
	gateway gateway.Gateway
}

// NewScoreService creates a new ScoreService.
func NewScoreService(cfg *config.Config, gw gateway.Gateway) IScoreService {
	return &scoreService{cfg: cfg, gateway: gw}
}

// Score computes the qualification score for a lead. The model's judgment
// is preferred; any gateway failure or unusable response falls through to
// CalculateFallbackScore. Never errors.
func (s *scoreService) Score(ctx context.Context, attrs models.LeadAttributes) int {
	score, ok := s.gatewayScore(ctx, attrs)
	if !ok {
		score = CalculateFallbackScore(attrs)
	}
	if s.cfg.ClampScores {
		score = clampScore(score)
	}
	return score
}

// gatewayScore asks the model for a 0-100 motivation score and extracts the
// number from whatever text comes back. Returns ok=false when the gateway
// fails or the response holds no digits at all.
func (s *scoreService) gatewayScore(ctx context.Context, attrs models.LeadAttributes) (int, bool) {
	prompt, err := prompts.RenderScoring(attrs)
	if err != nil {
		log.Printf("Failed to render scoring prompt: %v. Using fallback rules.", err)
		return 0, false
	}

	resp, err := s.gateway.Generate(ctx, prompt)
	if err != nil {
		log.Printf("Model scoring failed: %v. Using fallback rules.", err)
		return 0, false
	}

	score, ok := ExtractScore(resp)
	if !ok {
		log.Printf("Model scoring response held no usable number (%q). Using fallback rules.", resp)
		return 0, false
	}
	return score, true
}

// ExtractScore concatenates every decimal digit in text and parses the
// result. ok is false when the text contains no digits or the concatenation
// does not parse as an integer.
func ExtractScore(text string) (int, bool) {
	var sb strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(sb.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// CalculateFallbackScore is the deterministic rule-table score: the sum of
// one lookup per categorical attribute plus the no-agent bonus. It is a pure
// function and the sum is not clamped, so highly qualified leads can exceed
// 100.
func CalculateFallbackScore(attrs models.LeadAttributes) int {
	score := 0
	score += budgetWeights[attrs.Budget]
	score += timelineWeights[attrs.Timeline]
	score += interestWeights[attrs.Interest]
	score += creditScoreWeights[attrs.CreditScore]
	score += downPaymentWeights[attrs.DownPayment]
	score += motivationWeights[attrs.Motivation]
	score += conditionWeights[attrs.Condition]
	score += livingWeights[attrs.LivingInProperty]

	if attrs.HasAgent == "no" {
		score += noAgentBonus
	}

	return score
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
