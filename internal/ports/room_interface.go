package ports

import (
	"context"

	"github.com/AkshayTiwari27/LiveDocs/internal/model"
	"github.com/jmoiron/sqlx"
)

// RoomRepository : SQL слой для комнат
type RoomRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, room *model.Room) error
	GetByUUID(ctx context.Context, exec sqlx.ExtContext, roomUUID string) (*model.Room, error)
	UpdateTitle(ctx context.Context, exec sqlx.ExtContext, roomUUID, title string) error
	Delete(ctx context.Context, exec sqlx.ExtContext, roomUUID string) (string, error)
	ListForIdentity(ctx context.Context, exec sqlx.ExtContext, email string) ([]model.Room, error)
	BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error)
}

// RoomService : жизненный цикл комнаты и распространение изменений
type RoomService interface {
	Create(ctx context.Context, creatorUUID, creatorEmail string) (*model.Room, error)
	Rename(ctx context.Context, roomUUID, newTitle, actorEmail string) (*model.Room, error)
	GrantAccess(ctx context.Context, roomUUID, granteeEmail string, level model.AccessLevel, actor model.Actor) error
	RevokeAccess(ctx context.Context, roomUUID, targetEmail, actorEmail string) error
	Delete(ctx context.Context, roomUUID, actorEmail string) (string, error)
	ListForIdentity(ctx context.Context, email string) ([]model.Room, error)
	GetRoom(ctx context.Context, roomUUID, email string) (*model.Room, error)
}
