package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/AkshayTiwari27/LiveDocs/config"
	"github.com/AkshayTiwari27/LiveDocs/internal/model"
	"github.com/AkshayTiwari27/LiveDocs/internal/ports"
	"github.com/AkshayTiwari27/LiveDocs/internal/util"
	"github.com/google/uuid"
)

type NotificationService struct {
	notificationRepository ports.NotificationRepository
	cacheRepository        ports.CacheRepository
}

func NewNotificationService(
	notificationRepository ports.NotificationRepository,
	cacheRepository ports.CacheRepository,
) *NotificationService {
	return &NotificationService{
		notificationRepository: notificationRepository,
		cacheRepository:        cacheRepository,
	}
}

// Notify : создаёт долговременное уведомление и увеличивает счётчик
// непрочитанных получателя ровно на 1. Повторный вызов с теми же аргументами
// создаёт новое уведомление — дедупликации нет, каждый грант значим.
// Вызывается ДО отправки broadcast-события той же мутации, чтобы сессия,
// перечитавшая список по событию, уже видела обновлённый счётчик.
func (s *NotificationService) Notify(ctx context.Context, recipientEmail string, kind model.NotificationKind, payload model.NotificationPayload) error {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return fmt.Errorf("[NotificationService] database connection не найден в context")
	}

	notification := &model.Notification{
		UUID:           uuid.New().String(),
		RecipientEmail: recipientEmail,
		Kind:           kind,
		Payload:        payload,
		Read:           false,
		CreatedAt:      time.Now(),
	}

	if err := s.notificationRepository.Create(ctx, db, notification); err != nil {
		return util.LogError("[NotificationService] не удалось сохранить уведомление", err)
	}

	if _, err := s.cacheRepository.IncrementUnread(ctx, recipientEmail); err != nil {
		return util.LogError("[NotificationService] не удалось увеличить счётчик", err)
	}

	log.Printf("[NotificationService] уведомление %s отправлено %s", kind, recipientEmail)

	return nil
}

func (s *NotificationService) ListForRecipient(ctx context.Context, email string) ([]model.Notification, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, fmt.Errorf("[NotificationService] database connection не найден в context")
	}

	return s.notificationRepository.ListForRecipient(ctx, db, email)
}

func (s *NotificationService) UnreadCount(ctx context.Context, email string) (int64, error) {
	return s.cacheRepository.UnreadCount(ctx, email)
}

// MarkAllRead : помечает уведомления прочитанными и сбрасывает счётчик.
// Уменьшение счётчика клиент поглощает молча, перечитывания оно не вызывает.
func (s *NotificationService) MarkAllRead(ctx context.Context, email string) error {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return fmt.Errorf("[NotificationService] database connection не найден в context")
	}

	if err := s.notificationRepository.MarkAllRead(ctx, db, email); err != nil {
		return util.LogError("[NotificationService] не удалось пометить прочитанными", err)
	}

	if err := s.cacheRepository.ResetUnread(ctx, email); err != nil {
		return util.LogError("[NotificationService] не удалось сбросить счётчик", err)
	}

	return nil
}
