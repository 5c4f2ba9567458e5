package ports

import (
	"context"

	"github.com/AkshayTiwari27/LiveDocs/internal/model"
)

// CacheRepository : Redis слой. Кэш списков комнат по identity
// и счётчик непрочитанных уведомлений.
type CacheRepository interface {
	SetRoomList(ctx context.Context, email string, rooms []model.Room) error
	GetRoomList(ctx context.Context, email string) ([]model.Room, error)
	InvalidateRoomList(ctx context.Context, email string) error
	InvalidateAllRoomLists(ctx context.Context) error

	IncrementUnread(ctx context.Context, email string) (int64, error)
	UnreadCount(ctx context.Context, email string) (int64, error)
	ResetUnread(ctx context.Context, email string) error
}
