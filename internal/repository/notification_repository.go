package repository

import (
	"context"

	"github.com/AkshayTiwari27/LiveDocs/config"
	"github.com/AkshayTiwari27/LiveDocs/internal/model"
	"github.com/AkshayTiwari27/LiveDocs/internal/util"
	"github.com/jmoiron/sqlx"
)

type NotificationRepository struct {
	database *config.Database
}

func NewNotificationRepository(database *config.Database) *NotificationRepository {
	return &NotificationRepository{database: database}
}

func (r *NotificationRepository) Create(ctx context.Context, exec sqlx.ExtContext, notification *model.Notification) error {
	query := `
		INSERT INTO notifications (uuid, recipient_email, kind, payload, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := exec.ExecContext(ctx, query,
		notification.UUID,
		notification.RecipientEmail,
		notification.Kind,
		notification.Payload,
		notification.Read,
		notification.CreatedAt,
	)
	if err != nil {
		return util.LogError("[NotificationRepo] не удалось сохранить уведомление", err)
	}

	return nil
}

func (r *NotificationRepository) ListForRecipient(ctx context.Context, exec sqlx.ExtContext, email string) ([]model.Notification, error) {
	var notifications []model.Notification
	err := sqlx.SelectContext(ctx, exec, &notifications, `
		SELECT uuid, recipient_email, kind, payload, read, created_at
		FROM notifications
		WHERE recipient_email = $1
		ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, util.LogError("[NotificationRepo] не удалось получить уведомления", err)
	}

	return notifications, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, exec sqlx.ExtContext, email string) error {
	_, err := exec.ExecContext(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE recipient_email = $1 AND read = FALSE
	`, email)
	if err != nil {
		return util.LogError("[NotificationRepo] не удалось пометить уведомления прочитанными", err)
	}

	return nil
}
