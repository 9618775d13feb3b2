package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tribalconversions/tribal-backend/internal/config"
	"github.com/tribalconversions/tribal-backend/internal/models"
)

// ILeadService defines the interface for lead storage and queries.
// Leads are append-only: created exactly once at submission, never updated.
type ILeadService interface {
	CreateLeadWithFollowups(ctx context.Context, attrs models.LeadAttributes, score int, message string) (*models.Lead, error)
	ListByScoreDesc(ctx context.Context) ([]models.Lead, error)
	FindOldestByEmail(ctx context.Context, email string) (*models.Lead, error)
	AnalyticsSummary(ctx context.Context) (*models.AnalyticsSummary, error)
	AnalyticsTimeline(ctx context.Context) ([]models.TimelinePoint, error)
	EnsureIndexes(ctx context.Context) error
}

const (
	leadsCollection     = "leads"
	followupsCollection = "followups"
	countersCollection  = "counters"
)

// leadService implements ILeadService.
type leadService struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    *config.Config
}

// NewLeadService creates a new LeadService.
func NewLeadService(client *mongo.Client, db *mongo.Database, cfg *config.Config) ILeadService {
	return &leadService{client: client, db: db, cfg: cfg}
}

// EnsureIndexes creates the indexes the read and sweep paths rely on:
// leads by email and by descending score, followups by the sent flag
// (the sweep's "sent=false" scan is the core access pattern).
func (s *leadService) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(leadsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{Keys: bson.D{{Key: "score", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create leads indexes: %w", err)
	}
	_, err = s.db.Collection(followupsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sent", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create followups index: %w", err)
	}
	return nil
}

// nextSeq assigns the next lead sequence number from the counters collection.
func (s *leadService) nextSeq(ctx context.Context) (int64, error) {
	var counter struct {
		Value int64 `bson:"value"`
	}
	err := s.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": "leads"},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to assign lead sequence: %w", err)
	}
	return counter.Value, nil
}

// CreateLeadWithFollowups durably stores the lead and enqueues its three
// scheduled follow-ups in one transaction: the sweep must never observe a
// followup without its lead. This is the one must-succeed step of a
// submission; the caller fails the request if it errors.
func (s *leadService) CreateLeadWithFollowups(ctx context.Context, attrs models.LeadAttributes, score int, message string) (*models.Lead, error) {
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return nil, err
	}

	lead := &models.Lead{
		Seq:            seq,
		CreatedAt:      time.Now().UTC(),
		LeadAttributes: attrs,
		Score:          score,
		Message:        message,
	}

	insertBoth := func(sc context.Context) error {
		res, err := s.db.Collection(leadsCollection).InsertOne(sc, lead)
		if err != nil {
			return fmt.Errorf("failed to insert lead: %w", err)
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			lead.ID = oid
		}

		followups := make([]interface{}, 0, len(models.FollowupOffsets))
		for _, day := range models.FollowupOffsets {
			followups = append(followups, &models.Followup{
				LeadEmail: attrs.Email,
				Day:       day,
				Subject:   fmt.Sprintf("Follow-up Day %d", day),
				Message:   message,
				Sent:      false,
				CreatedAt: lead.CreatedAt,
			})
		}
		if _, err := s.db.Collection(followupsCollection).InsertMany(sc, followups); err != nil {
			return fmt.Errorf("failed to insert followups: %w", err)
		}
		return nil
	}

	session, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start MongoDB session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, insertBoth(sessCtx)
	})
	if err != nil && isTransactionsUnsupported(err) {
		// Standalone deployments (local dev, tests) have no replica set.
		// Coupled-write atomicity is relaxed there; production runs against
		// a replica set where the transaction path applies.
		log.Printf("MongoDB transactions unavailable (%v); inserting lead and followups without one.", err)
		err = insertBoth(ctx)
	}
	if err != nil {
		return nil, err
	}

	return lead, nil
}

// isTransactionsUnsupported reports whether the error indicates a
// standalone mongod that cannot run multi-document transactions.
func isTransactionsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Transaction numbers are only allowed") ||
		strings.Contains(msg, "transactions are not supported") ||
		strings.Contains(msg, "IllegalOperation")
}

// ListByScoreDesc returns every stored lead ordered by descending score.
func (s *leadService) ListByScoreDesc(ctx context.Context) ([]models.Lead, error) {
	cursor, err := s.db.Collection(leadsCollection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "score", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer cursor.Close(ctx)

	leads := []models.Lead{}
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, fmt.Errorf("failed to decode leads: %w", err)
	}
	return leads, nil
}

// FindOldestByEmail returns the earliest-submitted lead for an email, or
// mongo.ErrNoDocuments. The sweep uses this to anchor follow-up timing.
func (s *leadService) FindOldestByEmail(ctx context.Context, email string) (*models.Lead, error) {
	var lead models.Lead
	err := s.db.Collection(leadsCollection).FindOne(ctx,
		bson.M{"email": email},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	).Decode(&lead)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// AnalyticsSummary aggregates lead counts and the average score.
func (s *leadService) AnalyticsSummary(ctx context.Context) (*models.AnalyticsSummary, error) {
	coll := s.db.Collection(leadsCollection)

	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	avg := 0.0
	if total > 0 {
		cursor, err := coll.Aggregate(ctx, mongo.Pipeline{
			bson.D{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: nil},
				{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$score"}}},
			}}},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate average score: %w", err)
		}
		defer cursor.Close(ctx)
		var results []struct {
			Avg float64 `bson:"avg"`
		}
		if err := cursor.All(ctx, &results); err != nil {
			return nil, fmt.Errorf("failed to decode average score: %w", err)
		}
		if len(results) > 0 {
			avg = results[0].Avg
		}
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	thisMonth, err := coll.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": monthStart}})
	if err != nil {
		return nil, fmt.Errorf("failed to count this month's leads: %w", err)
	}

	return &models.AnalyticsSummary{
		TotalLeads:     total,
		AverageScore:   math.Round(avg*10) / 10,
		LeadsThisMonth: thisMonth,
	}, nil
}

// AnalyticsTimeline returns per-day lead counts for the most recent 30
// days that have any submissions, ascending by date.
func (s *leadService) AnalyticsTimeline(ctx context.Context) ([]models.TimelinePoint, error) {
	cursor, err := s.db.Collection(leadsCollection).Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$created_at"},
			}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
		bson.D{{Key: "$limit", Value: 30}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate timeline: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Date  string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode timeline: %w", err)
	}

	points := make([]models.TimelinePoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, models.TimelinePoint{Date: row.Date, Count: row.Count})
	}
	return points, nil
}
