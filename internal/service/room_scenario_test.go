package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/AkshayTiwari27/LiveDocs/config"
	"github.com/AkshayTiwari27/LiveDocs/internal/apperr"
	"github.com/AkshayTiwari27/LiveDocs/internal/model"
	"github.com/AkshayTiwari27/LiveDocs/internal/ports"
	"github.com/AkshayTiwari27/LiveDocs/internal/service"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore : состояние комнат и матрицы доступа в памяти; разделяется
// фейковыми репозиториями, чтобы прогонять сценарии целиком
type memStore struct {
	mu       sync.Mutex
	rooms    map[string]*model.Room
	accesses map[string]map[string]model.AccessLevel
	deleted  map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		rooms:    make(map[string]*model.Room),
		accesses: make(map[string]map[string]model.AccessLevel),
		deleted:  make(map[string]bool),
	}
}

func (s *memStore) alive(roomUUID string) *model.Room {
	room, ok := s.rooms[roomUUID]
	if !ok || s.deleted[roomUUID] {
		return nil
	}
	return room
}

type memRoomRepo struct{ store *memStore }

func (r *memRoomRepo) Create(ctx context.Context, exec sqlx.ExtContext, room *model.Room) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	copied := *room
	r.store.rooms[room.UUID] = &copied
	return nil
}

func (r *memRoomRepo) GetByUUID(ctx context.Context, exec sqlx.ExtContext, roomUUID string) (*model.Room, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	room := r.store.alive(roomUUID)
	if room == nil {
		return nil, fmt.Errorf("комната %s: %w", roomUUID, apperr.ErrNotFound)
	}
	copied := *room
	return &copied, nil
}

func (r *memRoomRepo) UpdateTitle(ctx context.Context, exec sqlx.ExtContext, roomUUID, title string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	room := r.store.alive(roomUUID)
	if room == nil {
		return fmt.Errorf("комната %s: %w", roomUUID, apperr.ErrNotFound)
	}
	room.Title = title
	return nil
}

func (r *memRoomRepo) Delete(ctx context.Context, exec sqlx.ExtContext, roomUUID string) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.alive(roomUUID) == nil {
		return "", fmt.Errorf("комната %s: %w", roomUUID, apperr.ErrNotFound)
	}
	r.store.deleted[roomUUID] = true
	return roomUUID, nil
}

func (r *memRoomRepo) ListForIdentity(ctx context.Context, exec sqlx.ExtContext, email string) ([]model.Room, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var rooms []model.Room
	for uuid, room := range r.store.rooms {
		if r.store.deleted[uuid] {
			continue
		}
		if room.CreatorEmail == email {
			rooms = append(rooms, *room)
			continue
		}
		if _, ok := r.store.accesses[uuid][email]; ok {
			rooms = append(rooms, *room)
		}
	}
	return rooms, nil
}

func (r *memRoomRepo) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	return &fakeTx{}, noOp, noOp, nil
}

type memAccessRepo struct{ store *memStore }

func (r *memAccessRepo) SetAccess(ctx context.Context, exec sqlx.ExtContext, roomUUID, email string, level model.AccessLevel, grantedBy string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	room := r.store.alive(roomUUID)
	if room == nil {
		return fmt.Errorf("комната %s: %w", roomUUID, apperr.ErrNotFound)
	}
	if email == room.CreatorEmail && level != model.AccessWrite {
		return fmt.Errorf("%s: %w", email, apperr.ErrSelfDemotion)
	}

	if r.store.accesses[roomUUID] == nil {
		r.store.accesses[roomUUID] = make(map[string]model.AccessLevel)
	}
	r.store.accesses[roomUUID][email] = level
	return nil
}

func (r *memAccessRepo) RemoveAccess(ctx context.Context, exec sqlx.ExtContext, roomUUID, email string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	room := r.store.alive(roomUUID)
	if room == nil {
		return fmt.Errorf("комната %s: %w", roomUUID, apperr.ErrNotFound)
	}
	if email == room.CreatorEmail {
		return fmt.Errorf("%s: %w", email, apperr.ErrSelfRemoval)
	}

	delete(r.store.accesses[roomUUID], email)
	return nil
}

func (r *memAccessRepo) RemoveAllForRoom(ctx context.Context, exec sqlx.ExtContext, roomUUID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.accesses, roomUUID)
	return nil
}

func (r *memAccessRepo) ListAccessors(ctx context.Context, exec sqlx.ExtContext, roomUUID string) (map[string]model.AccessLevel, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	accessors := make(map[string]model.AccessLevel)
	room := r.store.alive(roomUUID)
	if room != nil {
		accessors[room.CreatorEmail] = model.AccessWrite
	}
	for email, level := range r.store.accesses[roomUUID] {
		accessors[email] = level
	}
	return accessors, nil
}

func (r *memAccessRepo) HasAccess(ctx context.Context, exec sqlx.ExtContext, roomUUID, email string, min model.AccessLevel) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	room := r.store.alive(roomUUID)
	if room == nil {
		return false, nil
	}
	if room.CreatorEmail == email {
		return true, nil
	}
	level, ok := r.store.accesses[roomUUID][email]
	if !ok {
		return false, nil
	}
	return level.Satisfies(min), nil
}

type memCache struct {
	mu            sync.Mutex
	invalidations int
}

func (c *memCache) SetRoomList(ctx context.Context, email string, rooms []model.Room) error { return nil }
func (c *memCache) GetRoomList(ctx context.Context, email string) ([]model.Room, error) {
	return nil, nil
}
func (c *memCache) InvalidateRoomList(ctx context.Context, email string) error { return nil }
func (c *memCache) InvalidateAllRoomLists(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	return nil
}
func (c *memCache) IncrementUnread(ctx context.Context, email string) (int64, error) { return 1, nil }
func (c *memCache) UnreadCount(ctx context.Context, email string) (int64, error)    { return 0, nil }
func (c *memCache) ResetUnread(ctx context.Context, email string) error             { return nil }

type publishedEvent struct {
	roomUUID string
	event    model.RoomEvent
	// комната ещё жива в момент публикации
	roomAlive bool
}

// recordingTransport : фиксирует публикации вместе с состоянием хранилища
// на момент вызова
type recordingTransport struct {
	store *memStore

	mu       sync.Mutex
	events   []publishedEvent
	channels map[string]bool
}

func newRecordingTransport(store *memStore) *recordingTransport {
	return &recordingTransport{store: store, channels: make(map[string]bool)}
}

func (t *recordingTransport) CreateChannel(roomUUID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.channels[roomUUID] = true
}

func (t *recordingTransport) RemoveChannel(roomUUID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.channels, roomUUID)
}

func (t *recordingTransport) Subscribe(roomUUID string, session ports.Session) error { return nil }

func (t *recordingTransport) Unsubscribe(roomUUID, sessionID string) {}

func (t *recordingTransport) Publish(roomUUID string, event model.RoomEvent) error {
	t.store.mu.Lock()
	alive := t.store.alive(roomUUID) != nil
	t.store.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, publishedEvent{roomUUID: roomUUID, event: event, roomAlive: alive})
	return nil
}

type notifyRecord struct {
	recipient string
	kind      model.NotificationKind
}

// recordingNotifier : фиксирует уведомления вместо записи в БД
type recordingNotifier struct {
	mu      sync.Mutex
	records []notifyRecord
}

func (n *recordingNotifier) Notify(ctx context.Context, recipientEmail string, kind model.NotificationKind, payload model.NotificationPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, notifyRecord{recipient: recipientEmail, kind: kind})
	return nil
}

func (n *recordingNotifier) ListForRecipient(ctx context.Context, email string) ([]model.Notification, error) {
	return nil, nil
}
func (n *recordingNotifier) UnreadCount(ctx context.Context, email string) (int64, error) {
	return 0, nil
}
func (n *recordingNotifier) MarkAllRead(ctx context.Context, email string) error { return nil }

// Жизненный цикл комнаты целиком: создание, выдача, отзыв, удаление
func TestRoomLifecycleScenario(t *testing.T) {
	store := newMemStore()
	transport := newRecordingTransport(store)
	notifier := &recordingNotifier{}
	cache := &memCache{}
	svc := service.NewRoomService(&memRoomRepo{store: store}, &memAccessRepo{store: store}, cache, notifier, transport)

	ctx := context.WithValue(context.Background(), "db", &config.Database{})
	alice := model.Actor{UUID: "user-1", Email: "alice@x.com", Name: "Alice"}

	// создание: заголовок по умолчанию, создатель с write
	room, err := svc.Create(ctx, alice.UUID, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, "Untitled", room.Title)

	got, err := svc.GetRoom(ctx, room.UUID, alice.Email)
	require.NoError(t, err)
	assert.Equal(t, map[string]model.AccessLevel{"alice@x.com": model.AccessWrite}, got.Accessors)

	// выдача read: ровно одно уведомление получателю
	require.NoError(t, svc.GrantAccess(ctx, room.UUID, "bob@x.com", model.AccessRead, alice))
	require.Len(t, notifier.records, 1)
	assert.Equal(t, notifyRecord{recipient: "bob@x.com", kind: model.NotificationAccessGranted}, notifier.records[0])

	// bob читает, но переименовать не может
	_, err = svc.GetRoom(ctx, room.UUID, "bob@x.com")
	assert.NoError(t, err)
	_, err = svc.Rename(ctx, room.UUID, "Secret plans", "bob@x.com")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// отзыв тихий и идемпотентный
	require.NoError(t, svc.RevokeAccess(ctx, room.UUID, "bob@x.com", alice.Email))
	require.NoError(t, svc.RevokeAccess(ctx, room.UUID, "bob@x.com", alice.Email))
	assert.Len(t, notifier.records, 1)

	_, err = svc.GetRoom(ctx, room.UUID, "bob@x.com")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// создателя нельзя убрать из собственной комнаты
	err = svc.RevokeAccess(ctx, room.UUID, alice.Email, alice.Email)
	assert.ErrorIs(t, err, apperr.ErrSelfRemoval)

	// удаление: DOCUMENT_DELETED уходит, пока комната ещё жива
	_, err = svc.Delete(ctx, room.UUID, alice.Email)
	require.NoError(t, err)

	last := transport.events[len(transport.events)-1]
	assert.Equal(t, model.EventRoomDeleted, last.event.Type)
	assert.True(t, last.roomAlive, "DOCUMENT_DELETED должен уходить до удаления комнаты")
	assert.False(t, transport.channels[room.UUID])

	_, err = svc.GetRoom(ctx, room.UUID, alice.Email)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	rooms, err := svc.ListForIdentity(ctx, alice.Email)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}
