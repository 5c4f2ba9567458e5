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

type AccessRepository struct {
	database *config.Database
}

func NewAccessRepository(database *config.Database) *AccessRepository {
	return &AccessRepository{database: database}
}

// creatorEmail : email создателя комнаты; apperr.ErrNotFound, если комната
// не существует или удалена
func (r *AccessRepository) creatorEmail(ctx context.Context, exec sqlx.ExtContext, roomUUID string) (string, error) {
	var creator string
	err := sqlx.GetContext(ctx, exec, &creator, `
		SELECT creator_email FROM rooms WHERE uuid = $1 AND deleted_at IS NULL
	`, roomUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("[AccessRepo] комната %s: %w", roomUUID, apperr.ErrNotFound)
	}
	if err != nil {
		return "", util.LogError("[AccessRepo] не удалось получить создателя комнаты", err)
	}
	return creator, nil
}

// SetAccess : вставляет или заменяет запись матрицы доступа.
// Создателя нельзя понизить ниже write (apperr.ErrSelfDemotion).
func (r *AccessRepository) SetAccess(ctx context.Context, exec sqlx.ExtContext, roomUUID, email string, level model.AccessLevel, grantedBy string) error {
	creator, err := r.creatorEmail(ctx, exec, roomUUID)
	if err != nil {
		return err
	}

	if email == creator && level != model.AccessWrite {
		return fmt.Errorf("[AccessRepo] %s: %w", email, apperr.ErrSelfDemotion)
	}

	query := `
		INSERT INTO room_accesses (room_uuid, email, level, granted_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (room_uuid, email)
		DO UPDATE SET level = EXCLUDED.level, granted_by = EXCLUDED.granted_by, updated_at = NOW()
	`
	if _, err := exec.ExecContext(ctx, query, roomUUID, email, level, grantedBy); err != nil {
		return util.LogError("[AccessRepo] не удалось записать доступ", err)
	}

	return nil
}

// RemoveAccess : удаляет запись матрицы. Идемпотентна: удаление
// отсутствующей записи — no-op. Создателя удалить нельзя (apperr.ErrSelfRemoval).
func (r *AccessRepository) RemoveAccess(ctx context.Context, exec sqlx.ExtContext, roomUUID, email string) error {
	creator, err := r.creatorEmail(ctx, exec, roomUUID)
	if err != nil {
		return err
	}

	if email == creator {
		return fmt.Errorf("[AccessRepo] %s: %w", email, apperr.ErrSelfRemoval)
	}

	_, err = exec.ExecContext(ctx, `
		DELETE FROM room_accesses
		WHERE room_uuid = $1 AND email = $2
	`, roomUUID, email)
	if err != nil {
		return util.LogError("[AccessRepo] не удалось удалить доступ", err)
	}

	return nil
}

// RemoveAllForRoom : очищает матрицу при удалении комнаты
func (r *AccessRepository) RemoveAllForRoom(ctx context.Context, exec sqlx.ExtContext, roomUUID string) error {
	_, err := exec.ExecContext(ctx, `
		DELETE FROM room_accesses WHERE room_uuid = $1
	`, roomUUID)
	if err != nil {
		return util.LogError("[AccessRepo] не удалось очистить матрицу доступа", err)
	}
	return nil
}

// ListAccessors : текущая матрица доступа комнаты
func (r *AccessRepository) ListAccessors(ctx context.Context, exec sqlx.ExtContext, roomUUID string) (map[string]model.AccessLevel, error) {
	var rows []model.RoomAccess
	err := sqlx.SelectContext(ctx, exec, &rows, `
		SELECT room_uuid, email, level, granted_by, created_at, updated_at
		FROM room_accesses
		WHERE room_uuid = $1
	`, roomUUID)
	if err != nil {
		return nil, util.LogError("[AccessRepo] не удалось получить матрицу доступа", err)
	}

	accessors := make(map[string]model.AccessLevel, len(rows))
	for _, row := range rows {
		accessors[row.Email] = row.Level
	}
	return accessors, nil
}

// HasAccess : true, если у email есть доступ не ниже min.
// Создатель учитывается через rooms на случай рассинхронизации матрицы.
func (r *AccessRepository) HasAccess(ctx context.Context, exec sqlx.ExtContext, roomUUID, email string, min model.AccessLevel) (bool, error) {
	levelFilter := `a.level = 'write'`
	if min == model.AccessRead {
		levelFilter = `a.level IN ('read', 'write')`
	}

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM rooms AS r
			LEFT JOIN room_accesses AS a
			  ON r.uuid = a.room_uuid
			 AND a.email = $2
			 AND ` + levelFilter + `
			WHERE r.uuid = $1
			  AND r.deleted_at IS NULL
			  AND (r.creator_email = $2 OR a.email IS NOT NULL)
		)
	`

	var exists bool
	err := sqlx.GetContext(ctx, exec, &exists, query, roomUUID, email)
	if err != nil {
		return false, util.LogError("[AccessRepo] ошибка проверки доступа", err)
	}
	return exists, nil
}
