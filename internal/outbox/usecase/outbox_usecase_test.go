package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"

	"github.com/allisson/orders/internal/outbox/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockTxManager is a mock implementation of database.TxManager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	// Execute the function to test the logic inside
	return fn(ctx)
}

// MockOutboxEventRepository is a mock implementation of OutboxEventRepository
type MockOutboxEventRepository struct {
	mock.Mock
}

func (m *MockOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OutboxEvent), args.Error(1)
}

func (m *MockOutboxEventRepository) MarkProcessed(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockOutboxEventRepository) IncrementRetry(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) bool {
	args := m.Called(ctx, event)
	return args.Bool(0)
}

func newPendingEvent(eventType, payload string) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            uuid.Must(uuid.NewV7()),
		AggregateID:   uuid.Must(uuid.NewV7()),
		AggregateType: "order",
		EventType:     eventType,
		Payload:       payload,
		Status:        domain.OutboxEventStatusPending,
		MaxRetries:    domain.DefaultMaxRetries,
	}
}

func TestNewOutboxUseCase(t *testing.T) {
	config := Config{
		Interval:  5 * time.Second,
		BatchSize: 10,
	}
	txManager := &MockTxManager{}
	outboxRepo := &MockOutboxEventRepository{}
	publisher := &MockEventPublisher{}

	uc := NewOutboxUseCase(config, txManager, outboxRepo, publisher, nil)

	assert.NotNil(t, uc)
	assert.Equal(t, config.Interval, uc.config.Interval)
	assert.Equal(t, config.BatchSize, uc.config.BatchSize)
}

func TestOutboxUseCase_Start_ContextCancellation(t *testing.T) {
	config := Config{
		Interval:  100 * time.Millisecond,
		BatchSize: 10,
	}
	txManager := &MockTxManager{}
	outboxRepo := &MockOutboxEventRepository{}
	publisher := &MockEventPublisher{}

	uc := NewOutboxUseCase(config, txManager, outboxRepo, publisher, nil)

	ctx, cancel := context.WithCancel(context.Background())

	// Cancel context immediately
	cancel()

	err := uc.Start(ctx)
	assert.Error(t, err)
	assert.Equal(t, context.Canceled, err)
}

func TestOutboxUseCase_ProcessEvents_Success(t *testing.T) {
	config := Config{
		Interval:  5 * time.Second,
		BatchSize: 10,
	}
	txManager := &MockTxManager{}
	outboxRepo := &MockOutboxEventRepository{}
	publisher := &MockEventPublisher{}

	uc := NewOutboxUseCase(config, txManager, outboxRepo, publisher, nil)

	ctx := context.Background()
	events := []*domain.OutboxEvent{
		newPendingEvent("order.created", `{"order_id":"1"}`),
		newPendingEvent("order.created", `{"order_id":"2"}`),
	}

	// Setup expectations
	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	outboxRepo.On("GetPendingEvents", ctx, config.BatchSize).Return(events, nil)
	publisher.On("Publish", ctx, events[0]).Return(true)
	publisher.On("Publish", ctx, events[1]).Return(true)
	outboxRepo.On("MarkProcessed", ctx, events[0].ID.String()).Return(true, nil)
	outboxRepo.On("MarkProcessed", ctx, events[1].ID.String()).Return(true, nil)

	err := uc.ProcessEvents(ctx)

	assert.NoError(t, err)
	txManager.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOutboxUseCase_ProcessEvents_NoEvents(t *testing.T) {
	config := Config{
		Interval:  5 * time.Second,
		BatchSize: 10,
	}
	txManager := &MockTxManager{}
	outboxRepo := &MockOutboxEventRepository{}
	publisher := &MockEventPublisher{}

	uc := NewOutboxUseCase(config, txManager, outboxRepo, publisher, nil)

	ctx := context.Background()
	emptyEvents := []*domain.OutboxEvent{}

	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	outboxRepo.On("GetPendingEvents", ctx, config.BatchSize).Return(emptyEvents, nil)

	err := uc.ProcessEvents(ctx)

	assert.NoError(t, err)
	txManager.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Publish")
}

func TestOutboxUseCase_ProcessEvents_GetPendingError(t *testing.T) {
	config := Config{
		Interval:  5 * time.Second,
		BatchSize: 10,
	}
	txManager := &MockTxManager{}
	outboxRepo := &MockOutboxEventRepository{}
	publisher := &MockEventPublisher{}

	uc := NewOutboxUseCase(config, txManager, outboxRepo, publisher, nil)

	ctx := context.Background()
	getError := errors.New("database error")

	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	outboxRepo.On("GetPendingEvents", ctx, config.BatchSize).Return(nil, getError)

	err := uc.ProcessEvents(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	txManager.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
}

func TestOutboxUseCase_ProcessEvents_PublishFailureSpendsRetry(t *testing.T) {
	config := Config{
		Interval:  5 * time.Second,
		BatchSize: 10,
	}
	txManager := &MockTxManager{}
	outboxRepo := &MockOutboxEventRepository{}
	publisher := &MockEventPublisher{}

	uc := NewOutboxUseCase(config, txManager, outboxRepo, publisher, nil)

	ctx := context.Background()
	event := newPendingEvent("order.created", `{"order_id":"1"}`)
	events := []*domain.OutboxEvent{event}

	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	outboxRepo.On("GetPendingEvents", ctx, config.BatchSize).Return(events, nil)
	publisher.On("Publish", ctx, event).Return(false)
	outboxRepo.On("IncrementRetry", ctx, event.ID.String()).Return(true, nil)

	err := uc.ProcessEvents(ctx)

	// A publish failure is bookkeeping, not a batch error
	assert.NoError(t, err)
	txManager.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
	outboxRepo.AssertNotCalled(t, "MarkProcessed", ctx, event.ID.String())
}

func TestOutboxUseCase_ProcessEvents_PublishFailureDoesNotStopBatch(t *testing.T) {
	config := Config{
		Interval:  5 * time.Second,
		BatchSize: 10,
	}
	txManager := &MockTxManager{}
	outboxRepo := &MockOutboxEventRepository{}
	publisher := &MockEventPublisher{}

	uc := NewOutboxUseCase(config, txManager, outboxRepo, publisher, nil)

	ctx := context.Background()
	failing := newPendingEvent("order.created", `{"order_id":"1"}`)
	succeeding := newPendingEvent("order.created", `{"order_id":"2"}`)
	events := []*domain.OutboxEvent{failing, succeeding}

	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	outboxRepo.On("GetPendingEvents", ctx, config.BatchSize).Return(events, nil)
	publisher.On("Publish", ctx, failing).Return(false)
	publisher.On("Publish", ctx, succeeding).Return(true)
	outboxRepo.On("IncrementRetry", ctx, failing.ID.String()).Return(true, nil)
	outboxRepo.On("MarkProcessed", ctx, succeeding.ID.String()).Return(true, nil)

	err := uc.ProcessEvents(ctx)

	assert.NoError(t, err)
	txManager.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOutboxUseCase_ProcessEvents_MarkProcessedError(t *testing.T) {
	config := Config{
		Interval:  5 * time.Second,
		BatchSize: 10,
	}
	txManager := &MockTxManager{}
	outboxRepo := &MockOutboxEventRepository{}
	publisher := &MockEventPublisher{}

	uc := NewOutboxUseCase(config, txManager, outboxRepo, publisher, nil)

	ctx := context.Background()
	event := newPendingEvent("order.created", `{"order_id":"1"}`)
	events := []*domain.OutboxEvent{event}

	updateError := errors.New("update failed")

	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	outboxRepo.On("GetPendingEvents", ctx, config.BatchSize).Return(events, nil)
	publisher.On("Publish", ctx, event).Return(true)
	outboxRepo.On("MarkProcessed", ctx, event.ID.String()).Return(false, updateError)

	err := uc.ProcessEvents(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "update failed")
	txManager.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestOutboxUseCase_ProcessEvents_IncrementRetryError(t *testing.T) {
	config := Config{
		Interval:  5 * time.Second,
		BatchSize: 10,
	}
	txManager := &MockTxManager{}
	outboxRepo := &MockOutboxEventRepository{}
	publisher := &MockEventPublisher{}

	uc := NewOutboxUseCase(config, txManager, outboxRepo, publisher, nil)

	ctx := context.Background()
	event := newPendingEvent("order.created", `{"order_id":"1"}`)
	events := []*domain.OutboxEvent{event}

	updateError := errors.New("retry update failed")

	txManager.On("WithTx", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	outboxRepo.On("GetPendingEvents", ctx, config.BatchSize).Return(events, nil)
	publisher.On("Publish", ctx, event).Return(false)
	outboxRepo.On("IncrementRetry", ctx, event.ID.String()).Return(false, updateError)

	err := uc.ProcessEvents(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retry update failed")
	txManager.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}
