package ports

import (
	"context"

	"github.com/AkshayTiwari27/LiveDocs/internal/model"
	"github.com/jmoiron/sqlx"
)

// AccessRepository : матрица доступа комнаты (email -> уровень).
// Единственный источник истины о правах; мутируется только явными операциями.
type AccessRepository interface {
	SetAccess(ctx context.Context, exec sqlx.ExtContext, roomUUID, email string, level model.AccessLevel, grantedBy string) error
	RemoveAccess(ctx context.Context, exec sqlx.ExtContext, roomUUID, email string) error
	RemoveAllForRoom(ctx context.Context, exec sqlx.ExtContext, roomUUID string) error
	ListAccessors(ctx context.Context, exec sqlx.ExtContext, roomUUID string) (map[string]model.AccessLevel, error)
	HasAccess(ctx context.Context, exec sqlx.ExtContext, roomUUID, email string, min model.AccessLevel) (bool, error)
}
