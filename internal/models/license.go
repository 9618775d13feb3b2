package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// License is a per-client license key record. Only the bcrypt hash of the
// key is stored.
type License struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ClientID  string             `bson:"client_id" json:"client_id"`
	KeyHash   []byte             `bson:"key_hash" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
