package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AkshayTiwari27/LiveDocs/config"
	"github.com/AkshayTiwari27/LiveDocs/internal/apperr"
	"github.com/AkshayTiwari27/LiveDocs/internal/model"
	"github.com/AkshayTiwari27/LiveDocs/internal/util"
	"github.com/jmoiron/sqlx"
)

type RoomRepository struct {
	database *config.Database
}

func NewRoomRepository(database *config.Database) *RoomRepository {
	return &RoomRepository{database: database}
}

func (r *RoomRepository) Create(ctx context.Context, exec sqlx.ExtContext, room *model.Room) error {
	query := `
		INSERT INTO rooms (uuid, title, creator_uuid, creator_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := exec.ExecContext(ctx, query,
		room.UUID, room.Title, room.CreatorUUID, room.CreatorEmail, room.CreatedAt, room.UpdatedAt)
	if err != nil {
		return util.LogError("[RoomRepo] не удалось создать комнату", err)
	}

	return nil
}

func (r *RoomRepository) GetByUUID(ctx context.Context, exec sqlx.ExtContext, roomUUID string) (*model.Room, error) {
	var room model.Room
	err := sqlx.GetContext(ctx, exec, &room, `
		SELECT uuid, title, creator_uuid, creator_email, created_at, updated_at, deleted_at
		FROM rooms
		WHERE uuid = $1 AND deleted_at IS NULL
	`, roomUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("[RoomRepo] комната %s: %w", roomUUID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, util.LogError("[RoomRepo] не удалось получить комнату", err)
	}

	return &room, nil
}

func (r *RoomRepository) UpdateTitle(ctx context.Context, exec sqlx.ExtContext, roomUUID, title string) error {
	result, err := exec.ExecContext(ctx, `
		UPDATE rooms SET title = $2, updated_at = NOW()
		WHERE uuid = $1 AND deleted_at IS NULL
	`, roomUUID, title)
	if err != nil {
		return util.LogError("[RoomRepo] не удалось обновить заголовок", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[RoomRepo] не удалось получить число строк", err)
	}
	if affected == 0 {
		return fmt.Errorf("[RoomRepo] комната %s: %w", roomUUID, apperr.ErrNotFound)
	}

	return nil
}

// Delete : помечает комнату удалённой. Состояние терминальное: все
// последующие обращения по этому id получают apperr.ErrNotFound.
func (r *RoomRepository) Delete(ctx context.Context, exec sqlx.ExtContext, roomUUID string) (string, error) {
	var deletedUUID string
	err := sqlx.GetContext(ctx, exec, &deletedUUID, `
		UPDATE rooms SET deleted_at = NOW(), updated_at = NOW()
		WHERE uuid = $1 AND deleted_at IS NULL
		RETURNING uuid
	`, roomUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("[RoomRepo] комната %s: %w", roomUUID, apperr.ErrNotFound)
	}
	if err != nil {
		return "", util.LogError("[RoomRepo] не удалось удалить комнату", err)
	}

	return deletedUUID, nil
}

// ListForIdentity : комнаты, к которым у email доступ не ниже read
// (создатель или запись в матрице), новые сверху
func (r *RoomRepository) ListForIdentity(ctx context.Context, exec sqlx.ExtContext, email string) ([]model.Room, error) {
	var rooms []model.Room
	err := sqlx.SelectContext(ctx, exec, &rooms, `
		SELECT DISTINCT r.uuid, r.title, r.creator_uuid, r.creator_email, r.created_at, r.updated_at, r.deleted_at
		FROM rooms AS r
		LEFT JOIN room_accesses AS a
		  ON r.uuid = a.room_uuid AND a.email = $1
		WHERE r.deleted_at IS NULL
		  AND (r.creator_email = $1 OR a.email IS NOT NULL)
		ORDER BY r.created_at DESC
	`, email)
	if err != nil {
		return nil, util.LogError("[RoomRepo] не удалось получить список комнат", err)
	}

	return rooms, nil
}

// BeginTX : возвращает exec, rollback и commit. rollback после commit — no-op.
func (r *RoomRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	tx, err := r.database.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, util.LogError("[RoomRepo] не удалось начать транзакцию", err)
	}

	committed := false
	rollback := func() error {
		if committed {
			return nil
		}
		return tx.Rollback()
	}
	commit := func() error {
		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return nil
	}

	return tx, rollback, commit, nil
}
