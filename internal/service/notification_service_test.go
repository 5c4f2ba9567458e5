package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/AkshayTiwari27/LiveDocs/config"
	"github.com/AkshayTiwari27/LiveDocs/internal/model"
	"github.com/AkshayTiwari27/LiveDocs/internal/service"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotificationRepository struct{ mock.Mock }

func (m *MockNotificationRepository) Create(ctx context.Context, exec sqlx.ExtContext, notification *model.Notification) error {
	return m.Called(ctx, exec, notification).Error(0)
}

func (m *MockNotificationRepository) ListForRecipient(ctx context.Context, exec sqlx.ExtContext, email string) ([]model.Notification, error) {
	args := m.Called(ctx, exec, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, exec sqlx.ExtContext, email string) error {
	return m.Called(ctx, exec, email).Error(0)
}

func newTestNotificationService() (*service.NotificationService, *MockNotificationRepository, *MockCacheRepository) {
	mockRepo := new(MockNotificationRepository)
	mockCache := new(MockCacheRepository)
	return service.NewNotificationService(mockRepo, mockCache), mockRepo, mockCache
}

func dbContext() context.Context {
	return context.WithValue(context.Background(), "db", &config.Database{})
}

// Строка уведомления пишется раньше инкремента счётчика
func TestNotify_RowBeforeCounter(t *testing.T) {
	svc, mockRepo, mockCache := newTestNotificationService()
	ctx := dbContext()

	var order []string

	mockRepo.On("Create", ctx, mock.Anything, mock.MatchedBy(func(n *model.Notification) bool {
		return n.RecipientEmail == "bob@x.com" && n.Kind == model.NotificationAccessGranted && n.Read == false
	})).Run(func(args mock.Arguments) { order = append(order, "create") }).Return(nil)
	mockCache.On("IncrementUnread", ctx, "bob@x.com").
		Run(func(args mock.Arguments) { order = append(order, "increment") }).Return(int64(1), nil)

	err := svc.Notify(ctx, "bob@x.com", model.NotificationAccessGranted, model.NotificationPayload{"updatedBy": "Alice"})

	require.NoError(t, err)
	assert.Equal(t, []string{"create", "increment"}, order)
}

// Каждый вызов создаёт новое уведомление, дедупликации нет
func TestNotify_NoDeduplication(t *testing.T) {
	svc, mockRepo, mockCache := newTestNotificationService()
	ctx := dbContext()
	payload := model.NotificationPayload{"updatedBy": "Alice"}

	mockRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil)
	mockCache.On("IncrementUnread", ctx, "bob@x.com").Return(int64(1), nil)

	require.NoError(t, svc.Notify(ctx, "bob@x.com", model.NotificationAccessGranted, payload))
	require.NoError(t, svc.Notify(ctx, "bob@x.com", model.NotificationAccessGranted, payload))

	mockRepo.AssertNumberOfCalls(t, "Create", 2)
	mockCache.AssertNumberOfCalls(t, "IncrementUnread", 2)
}

func TestNotify_NoDatabaseInContext(t *testing.T) {
	svc, mockRepo, _ := newTestNotificationService()

	err := svc.Notify(context.Background(), "bob@x.com", model.NotificationAccessGranted, nil)

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

// При ошибке записи счётчик не трогаем
func TestNotify_RepositoryError(t *testing.T) {
	svc, mockRepo, mockCache := newTestNotificationService()
	ctx := dbContext()

	mockRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(errors.New("db error"))

	err := svc.Notify(ctx, "bob@x.com", model.NotificationAccessGranted, nil)

	assert.Error(t, err)
	mockCache.AssertNotCalled(t, "IncrementUnread", mock.Anything, mock.Anything)
}

func TestMarkAllRead_ResetsCounter(t *testing.T) {
	svc, mockRepo, mockCache := newTestNotificationService()
	ctx := dbContext()

	mockRepo.On("MarkAllRead", ctx, mock.Anything, "bob@x.com").Return(nil)
	mockCache.On("ResetUnread", ctx, "bob@x.com").Return(nil)

	require.NoError(t, svc.MarkAllRead(ctx, "bob@x.com"))

	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestUnreadCount(t *testing.T) {
	svc, _, mockCache := newTestNotificationService()
	ctx := context.Background()

	mockCache.On("UnreadCount", ctx, "bob@x.com").Return(int64(3), nil)

	count, err := svc.UnreadCount(ctx, "bob@x.com")

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
