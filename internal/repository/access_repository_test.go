package repository_test

import (
	"context"
	"testing"

	"github.com/AkshayTiwari27/LiveDocs/internal/apperr"
	"github.com/AkshayTiwari27/LiveDocs/internal/model"
	"github.com/AkshayTiwari27/LiveDocs/internal/repository"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func expectCreator(mock sqlmock.Sqlmock, roomUUID, creator string) {
	mock.ExpectQuery(`SELECT creator_email FROM rooms WHERE uuid = \$1 AND deleted_at IS NULL`).
		WithArgs(roomUUID).
		WillReturnRows(sqlmock.NewRows([]string{"creator_email"}).AddRow(creator))
}

func TestSetAccess_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewAccessRepository(nil)

	expectCreator(mock, "room1", "alice@x.com")
	mock.ExpectExec(`INSERT INTO room_accesses`).
		WithArgs("room1", "bob@x.com", model.AccessRead, "alice@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetAccess(context.Background(), db, "room1", "bob@x.com", model.AccessRead, "alice@x.com")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Понижение создателя ниже write отклоняется до какой-либо записи
func TestSetAccess_SelfDemotion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewAccessRepository(nil)

	expectCreator(mock, "room1", "alice@x.com")

	err := repo.SetAccess(context.Background(), db, "room1", "alice@x.com", model.AccessRead, "alice@x.com")

	assert.ErrorIs(t, err, apperr.ErrSelfDemotion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Выдать создателю write заново можно: это не понижение
func TestSetAccess_CreatorWriteAllowed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewAccessRepository(nil)

	expectCreator(mock, "room1", "alice@x.com")
	mock.ExpectExec(`INSERT INTO room_accesses`).
		WithArgs("room1", "alice@x.com", model.AccessWrite, "alice@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetAccess(context.Background(), db, "room1", "alice@x.com", model.AccessWrite, "alice@x.com")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetAccess_RoomNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewAccessRepository(nil)

	mock.ExpectQuery(`SELECT creator_email FROM rooms`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"creator_email"}))

	err := repo.SetAccess(context.Background(), db, "ghost", "bob@x.com", model.AccessRead, "alice@x.com")

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemoveAccess_Creator(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewAccessRepository(nil)

	expectCreator(mock, "room1", "alice@x.com")

	err := repo.RemoveAccess(context.Background(), db, "room1", "alice@x.com")

	assert.ErrorIs(t, err, apperr.ErrSelfRemoval)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Удаление отсутствующей записи — no-op без ошибки
func TestRemoveAccess_Idempotent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewAccessRepository(nil)

	expectCreator(mock, "room1", "alice@x.com")
	mock.ExpectExec(`DELETE FROM room_accesses`).
		WithArgs("room1", "ghost@x.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RemoveAccess(context.Background(), db, "room1", "ghost@x.com")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAccessors(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewAccessRepository(nil)

	rows := sqlmock.NewRows([]string{"room_uuid", "email", "level", "granted_by", "created_at", "updated_at"}).
		AddRow("room1", "alice@x.com", "write", "alice@x.com", testTime, testTime).
		AddRow("room1", "bob@x.com", "read", "alice@x.com", testTime, testTime)
	mock.ExpectQuery(`SELECT room_uuid, email, level, granted_by, created_at, updated_at`).
		WithArgs("room1").
		WillReturnRows(rows)

	accessors, err := repo.ListAccessors(context.Background(), db, "room1")

	require.NoError(t, err)
	assert.Equal(t, map[string]model.AccessLevel{
		"alice@x.com": model.AccessWrite,
		"bob@x.com":   model.AccessRead,
	}, accessors)
}

func TestHasAccess_ReadLevelAcceptsBoth(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewAccessRepository(nil)

	mock.ExpectQuery(`a\.level IN \('read', 'write'\)`).
		WithArgs("room1", "bob@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	hasAccess, err := repo.HasAccess(context.Background(), db, "room1", "bob@x.com", model.AccessRead)

	require.NoError(t, err)
	assert.True(t, hasAccess)
}

// Для write-проверки read-записи недостаточно
func TestHasAccess_WriteLevelStrict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewAccessRepository(nil)

	mock.ExpectQuery(`a\.level = 'write'`).
		WithArgs("room1", "bob@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	hasAccess, err := repo.HasAccess(context.Background(), db, "room1", "bob@x.com", model.AccessWrite)

	require.NoError(t, err)
	assert.False(t, hasAccess)
}
