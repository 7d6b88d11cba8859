package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/recupaai/recovery/internal/entity"
	"github.com/recupaai/recovery/internal/usecase"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) GetByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindActiveByPhone(ctx context.Context, phoneNormalized string) (*entity.Lead, error) {
	args := m.Called(ctx, phoneNormalized)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindActiveByEmailAndProduct(ctx context.Context, email, productID string) (*entity.Lead, error) {
	args := m.Called(ctx, email, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByEmailAndProduct(ctx context.Context, email, productID string) ([]*entity.Lead, error) {
	args := m.Called(ctx, email, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]*entity.Lead, error) {
	args := m.Called(ctx, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindRecent(ctx context.Context, limit int) ([]*entity.Lead, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) ConditionalUpdate(ctx context.Context, id string, expectedStatus entity.LeadStatus, patch usecase.LeadPatch) (bool, error) {
	args := m.Called(ctx, id, expectedStatus, patch)
	return args.Bool(0), args.Error(1)
}

// MockProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) FindByExternalID(ctx context.Context, externalID, clientID string) (*entity.Product, error) {
	args := m.Called(ctx, externalID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockInstanceRepository
type MockInstanceRepository struct {
	mock.Mock
}

func (m *MockInstanceRepository) FindConnected(ctx context.Context, clientID string) (*entity.Instance, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Instance), args.Error(1)
}

func (m *MockInstanceRepository) Upsert(ctx context.Context, instance *entity.Instance) error {
	args := m.Called(ctx, instance)
	return args.Error(0)
}

func (m *MockInstanceRepository) UpdateStatus(ctx context.Context, instanceKey, status string) error {
	args := m.Called(ctx, instanceKey, status)
	return args.Error(0)
}

// MockReplyGenerator
type MockReplyGenerator struct {
	mock.Mock
}

func (m *MockReplyGenerator) Generate(ctx context.Context, product *entity.Product, lead *entity.Lead, window []entity.Message) (string, error) {
	args := m.Called(ctx, product, lead, window)
	return args.String(0), args.Error(1)
}

// MockMessageSender
type MockMessageSender struct {
	mock.Mock
}

func (m *MockMessageSender) SendText(ctx context.Context, instanceKey, phone, text string) error {
	args := m.Called(ctx, instanceKey, phone, text)
	return args.Error(0)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishRecovery(ctx context.Context, payload usecase.RecoveryPayload, delay time.Duration) error {
	args := m.Called(ctx, payload, delay)
	return args.Error(0)
}

func (m *MockQueueProducer) PublishRecoveryRetry(ctx context.Context, payload usecase.RecoveryPayload, backoff time.Duration) error {
	args := m.Called(ctx, payload, backoff)
	return args.Error(0)
}

// MockTurnRunner
type MockTurnRunner struct {
	mock.Mock
}

func (m *MockTurnRunner) Execute(ctx context.Context, leadID, inboundText string) (usecase.TurnResult, error) {
	args := m.Called(ctx, leadID, inboundText)
	return args.Get(0).(usecase.TurnResult), args.Error(1)
}

// MockAlertService
type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) SendRecoveryFailed(leadEmail, leadName, productName string) error {
	args := m.Called(leadEmail, leadName, productName)
	return args.Error(0)
}
