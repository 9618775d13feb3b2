package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LeadAttributes holds the qualification fields a lead submits. Every field
// is a free-form string; unknown values simply score zero in the fallback
// tables, so no enum validation happens at intake.
type LeadAttributes struct {
	Name             string `bson:"name" json:"name"`
	Email            string `bson:"email" json:"email"`
	Phone            string `bson:"phone" json:"phone"`
	Budget           string `bson:"budget" json:"budget"`
	Timeline         string `bson:"timeline" json:"timeline"`
	Interest         string `bson:"interest" json:"interest"`
	PropertyType     string `bson:"property_type" json:"property_type"`
	DownPayment      string `bson:"down_payment" json:"down_payment"`
	CreditScore      string `bson:"credit_score" json:"credit_score"`
	HasAgent         string `bson:"has_agent" json:"has_agent"`
	Notes            string `bson:"notes" json:"notes"`
	Zip              string `bson:"zip" json:"zip"`
	LivingInProperty string `bson:"living_in_property" json:"living_in_property"`
	Ownership        string `bson:"ownership" json:"ownership"`
	Condition        string `bson:"condition" json:"condition"`
	Motivation       string `bson:"motivation" json:"motivation"`
}

// Lead is a submitted prospect with its derived score and follow-up message.
// A lead is immutable once scored: Score and Message are computed exactly
// once at submission and never recomputed.
type Lead struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Seq            int64              `bson:"seq" json:"id"` // auto-assigned sequence number
	CreatedAt      time.Time          `bson:"created_at" json:"timestamp"`
	LeadAttributes `bson:",inline"`
	Score          int    `bson:"score" json:"score"`
	Message        string `bson:"message" json:"message"`
}
