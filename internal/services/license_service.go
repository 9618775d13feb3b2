package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/tribalconversions/tribal-backend/internal/models"
)

// ILicenseStore is the key-value lookup abstraction for per-client license
// keys. Verify never reveals whether the client or the key was the mismatch.
type ILicenseStore interface {
	Verify(ctx context.Context, clientID, licenseKey string) (bool, error)
	Upsert(ctx context.Context, clientID, licenseKey string) error
}

const licensesCollection = "licenses"

// licenseService implements ILicenseStore on MongoDB with bcrypt-hashed keys.
type licenseService struct {
	db *mongo.Database
}

// NewLicenseService creates a new LicenseService.
func NewLicenseService(db *mongo.Database) ILicenseStore {
	return &licenseService{db: db}
}

// EnsureLicenseIndexes creates the unique client_id index.
func EnsureLicenseIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(licensesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "client_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create licenses index: %w", err)
	}
	return nil
}

// Verify checks a client's license key against the stored bcrypt hash.
// Unknown clients and wrong keys both report invalid without error.
func (s *licenseService) Verify(ctx context.Context, clientID, licenseKey string) (bool, error) {
	var lic models.License
	err := s.db.Collection(licensesCollection).FindOne(ctx, bson.M{"client_id": clientID}).Decode(&lic)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up license for %s: %w", clientID, err)
	}

	if err := bcrypt.CompareHashAndPassword(lic.KeyHash, []byte(licenseKey)); err != nil {
		return false, nil
	}
	return true, nil
}

// Upsert stores (or replaces) a client's license key hash.
func (s *licenseService) Upsert(ctx context.Context, clientID, licenseKey string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(licenseKey), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash license key: %w", err)
	}

	_, err = s.db.Collection(licensesCollection).UpdateOne(ctx,
		bson.M{"client_id": clientID},
		bson.M{
			"$set":         bson.M{"key_hash": hash},
			"$setOnInsert": bson.M{"client_id": clientID, "created_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert license for %s: %w", clientID, err)
	}
	return nil
}

// SeedLicenses loads "client:key" pairs from the LICENSE_SEED config value
// into the store. Malformed pairs are logged and skipped.
func SeedLicenses(ctx context.Context, store ILicenseStore, seed string) error {
	if strings.TrimSpace(seed) == "" {
		return nil
	}
	for _, pair := range strings.Split(seed, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			log.Printf("Skipping malformed license seed entry: %q", pair)
			continue
		}
		if err := store.Upsert(ctx, parts[0], parts[1]); err != nil {
			return err
		}
	}
	return nil
}

// MemoryLicenseStore is an in-memory ILicenseStore for tests and for
// deployments that have not migrated license keys to the database.
type MemoryLicenseStore struct {
	keys map[string]string
}

// NewMemoryLicenseStore creates a MemoryLicenseStore from plain client->key pairs.
func NewMemoryLicenseStore(keys map[string]string) *MemoryLicenseStore {
	if keys == nil {
		keys = make(map[string]string)
	}
	return &MemoryLicenseStore{keys: keys}
}

// Verify compares against the in-memory table.
func (m *MemoryLicenseStore) Verify(ctx context.Context, clientID, licenseKey string) (bool, error) {
	expected, ok := m.keys[clientID]
	return ok && expected == licenseKey, nil
}

// Upsert stores the key in memory.
func (m *MemoryLicenseStore) Upsert(ctx context.Context, clientID, licenseKey string) error {
	m.keys[clientID] = licenseKey
	return nil
}
