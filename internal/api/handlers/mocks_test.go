package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/tribalconversions/tribal-backend/internal/models"
)

// --- Mocks ---

// MockScoreService
type MockScoreService struct {
	mock.Mock
}

func (m *MockScoreService) Score(ctx context.Context, attrs models.LeadAttributes) int {
	args := m.Called(ctx, attrs)
	return args.Int(0)
}

// MockMessageService
type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) Compose(ctx context.Context, attrs models.LeadAttributes) string {
	args := m.Called(ctx, attrs)
	return args.String(0)
}

// MockLeadService
type MockLeadService struct {
	mock.Mock
}

func (m *MockLeadService) CreateLeadWithFollowups(ctx context.Context, attrs models.LeadAttributes, score int, message string) (*models.Lead, error) {
	args := m.Called(ctx, attrs, score, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadService) ListByScoreDesc(ctx context.Context) ([]models.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Lead), args.Error(1)
}

func (m *MockLeadService) FindOldestByEmail(ctx context.Context, email string) (*models.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadService) AnalyticsSummary(ctx context.Context) (*models.AnalyticsSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalyticsSummary), args.Error(1)
}

func (m *MockLeadService) AnalyticsTimeline(ctx context.Context) ([]models.TimelinePoint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TimelinePoint), args.Error(1)
}

func (m *MockLeadService) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockLicenseStore
type MockLicenseStore struct {
	mock.Mock
}

func (m *MockLicenseStore) Verify(ctx context.Context, clientID, licenseKey string) (bool, error) {
	args := m.Called(ctx, clientID, licenseKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockLicenseStore) Upsert(ctx context.Context, clientID, licenseKey string) error {
	args := m.Called(ctx, clientID, licenseKey)
	return args.Error(0)
}

// MockEmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	args := m.Called(ctx, to, subject, rawMessage)
	return args.Error(0)
}
