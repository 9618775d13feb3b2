package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowupOffsets are the fixed day offsets at which scheduled follow-up
// emails go out after a lead submits.
var FollowupOffsets = []int{1, 3, 7}

// Followup is one pending scheduled send. It is associated to its lead by
// email, not by a strict foreign key: a followup whose lead is missing is
// skipped by the sweep, never errored.
type Followup struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	LeadEmail string             `bson:"lead_email" json:"lead_email"`
	Day       int                `bson:"followup_day" json:"followup_day"` // offset in days from lead submission
	Subject   string             `bson:"subject" json:"subject"`
	Message   string             `bson:"message" json:"message"` // copied from the lead at creation
	Sent      bool               `bson:"sent" json:"sent"`       // false -> true, at most once
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
