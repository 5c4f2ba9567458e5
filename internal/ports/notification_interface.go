package ports

import (
	"context"

	"github.com/AkshayTiwari27/LiveDocs/internal/model"
	"github.com/jmoiron/sqlx"
)

// NotificationRepository : SQL слой для долговременных уведомлений
type NotificationRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, notification *model.Notification) error
	ListForRecipient(ctx context.Context, exec sqlx.ExtContext, email string) ([]model.Notification, error)
	MarkAllRead(ctx context.Context, exec sqlx.ExtContext, email string) error
}

// NotificationService : адресная доставка уведомлений. Запись уведомления и
// инкремент счётчика выполняются до соответствующего broadcast-события.
type NotificationService interface {
	Notify(ctx context.Context, recipientEmail string, kind model.NotificationKind, payload model.NotificationPayload) error
	ListForRecipient(ctx context.Context, email string) ([]model.Notification, error)
	UnreadCount(ctx context.Context, email string) (int64, error)
	MarkAllRead(ctx context.Context, email string) error
}
