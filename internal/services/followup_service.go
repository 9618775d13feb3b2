package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tribalconversions/tribal-backend/internal/config"
	"github.com/tribalconversions/tribal-backend/internal/email"
	"github.com/tribalconversions/tribal-backend/internal/models"
)

// IFollowupService defines the interface for the scheduled follow-up sweep.
type IFollowupService interface {
	Sweep(ctx context.Context, now time.Time) (*SweepStats, error)
	ListPending(ctx context.Context) ([]models.Followup, error)
}

// SweepStats summarizes one sweep run for operational logging.
type SweepStats struct {
	Scanned   int // pending tasks examined
	Due       int // tasks whose offset had elapsed
	Sent      int // confirmed deliveries, flipped to sent
	Failed    int // delivery attempts that failed, left pending
	Orphaned  int // tasks whose lead email matched no stored lead
	NotYetDue int
}

// followupService implements IFollowupService.
type followupService struct {
	db      *mongo.Database
	cfg     *config.Config
	leadSvc ILeadService
	sender  email.Sender
}

// NewFollowupService creates a new FollowupService.
func NewFollowupService(db *mongo.Database, cfg *config.Config, leadSvc ILeadService, sender email.Sender) IFollowupService {
	return &followupService{db: db, cfg: cfg, leadSvc: leadSvc, sender: sender}
}

// Sweep walks every pending follow-up and dispatches the due ones. Per task:
// look up the lead by email (missing lead: skip, stay pending), compute
// whole elapsed days since the lead's submission, and deliver when the
// task's day offset has elapsed. Only a confirmed delivery flips sent, and
// the flip is guarded by a sent=false filter so a task can never be
// delivered twice even if sweeps overlap. One task's failure never aborts
// the others.
func (s *followupService) Sweep(ctx context.Context, now time.Time) (*SweepStats, error) {
	stats := &SweepStats{}

	cursor, err := s.db.Collection(followupsCollection).Find(ctx, bson.M{"sent": false})
	if err != nil {
		return stats, fmt.Errorf("failed to query pending followups: %w", err)
	}
	defer cursor.Close(ctx)

	var pending []models.Followup
	if err := cursor.All(ctx, &pending); err != nil {
		return stats, fmt.Errorf("failed to decode pending followups: %w", err)
	}

	for _, task := range pending {
		stats.Scanned++

		lead, err := s.leadSvc.FindOldestByEmail(ctx, task.LeadEmail)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				// Orphan: no matching lead. Deliberately left pending forever.
				log.Printf("Followup %s references unknown lead email %s; skipping.", task.ID.Hex(), task.LeadEmail)
				stats.Orphaned++
			} else {
				log.Printf("Failed to look up lead %s for followup %s: %v", task.LeadEmail, task.ID.Hex(), err)
			}
			continue
		}

		elapsedDays := int(now.Sub(lead.CreatedAt).Hours() / 24)
		if elapsedDays < task.Day {
			stats.NotYetDue++
			continue
		}
		stats.Due++

		raw := email.BuildRawMessage(s.cfg.SmtpFromAddress, task.LeadEmail, task.Subject, task.Message)
		if err := s.sender.Send(ctx, []string{task.LeadEmail}, task.Subject, raw); err != nil {
			// Delivery failed: leave pending for the next sweep.
			log.Printf("Followup delivery to %s (day %d) failed: %v", task.LeadEmail, task.Day, err)
			stats.Failed++
			continue
		}

		if err := s.markSent(ctx, task.ID); err != nil {
			log.Printf("Failed to mark followup %s sent: %v", task.ID.Hex(), err)
			continue
		}
		log.Printf("Follow-up email sent to %s for Day %d", task.LeadEmail, task.Day)
		stats.Sent++
	}

	return stats, nil
}

// markSent flips sent=false to sent=true for one task. The filter includes
// sent=false so the transition happens at most once.
func (s *followupService) markSent(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Collection(followupsCollection).UpdateOne(ctx,
		bson.M{"_id": id, "sent": false},
		bson.M{"$set": bson.M{"sent": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("followup %s already marked sent", id.Hex())
	}
	return nil
}

// ListPending returns every follow-up still awaiting delivery.
func (s *followupService) ListPending(ctx context.Context) ([]models.Followup, error) {
	cursor, err := s.db.Collection(followupsCollection).Find(ctx, bson.M{"sent": false})
	if err != nil {
		return nil, fmt.Errorf("failed to query pending followups: %w", err)
	}
	defer cursor.Close(ctx)

	pending := []models.Followup{}
	if err := cursor.All(ctx, &pending); err != nil {
		return nil, fmt.Errorf("failed to decode pending followups: %w", err)
	}
	return pending, nil
}
