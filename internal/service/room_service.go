package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/AkshayTiwari27/LiveDocs/config"
	"github.com/AkshayTiwari27/LiveDocs/internal/apperr"
	"github.com/AkshayTiwari27/LiveDocs/internal/model"
	"github.com/AkshayTiwari27/LiveDocs/internal/ports"
	"github.com/AkshayTiwari27/LiveDocs/internal/util"
)

// DefaultTitle : заголовок новой комнаты
const DefaultTitle = "Untitled"

type RoomService struct {
	roomRepository      ports.RoomRepository
	accessRepository    ports.AccessRepository
	cacheRepository     ports.CacheRepository
	notificationService ports.NotificationService
	transport           ports.Transport
}

func NewRoomService(
	roomRepository ports.RoomRepository,
	accessRepository ports.AccessRepository,
	cacheRepository ports.CacheRepository,
	notificationService ports.NotificationService,
	transport ports.Transport,
) *RoomService {
	return &RoomService{
		roomRepository:      roomRepository,
		accessRepository:    accessRepository,
		cacheRepository:     cacheRepository,
		notificationService: notificationService,
		transport:           transport,
	}
}

// Create : создаёт комнату с заголовком "Untitled" и записью
// создатель -> write в матрице доступа
func (s *RoomService) Create(ctx context.Context, creatorUUID, creatorEmail string) (*model.Room, error) {
	exec, rollback, commit, err := s.roomRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[RoomService] не удалось начать транзакцию", err)
	}
	defer rollback()

	roomID, err := util.GenerateUniqueRoomID(ctx, exec)
	if err != nil {
		return nil, util.LogError("[RoomService] не удалось выделить id комнаты", err)
	}

	now := time.Now()
	room := &model.Room{
		UUID:         roomID,
		Title:        DefaultTitle,
		CreatorUUID:  creatorUUID,
		CreatorEmail: creatorEmail,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.roomRepository.Create(ctx, exec, room); err != nil {
		return nil, util.LogError("[RoomService] не удалось создать комнату", err)
	}

	if err := s.accessRepository.SetAccess(ctx, exec, roomID, creatorEmail, model.AccessWrite, creatorEmail); err != nil {
		return nil, util.LogError("[RoomService] не удалось записать доступ создателя", err)
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[RoomService] ошибка коммита транзакции", err)
	}

	s.transport.CreateChannel(roomID)

	room.Accessors = map[string]model.AccessLevel{creatorEmail: model.AccessWrite}

	log.Printf("[RoomService] комната %s успешно создана", roomID)

	return room, nil
}

// Rename : обновляет заголовок и рассылает TITLE_UPDATED подключённым сессиям.
// Требует write-доступа актора.
func (s *RoomService) Rename(ctx context.Context, roomUUID, newTitle, actorEmail string) (*model.Room, error) {
	exec, rollback, commit, err := s.roomRepository.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[RoomService] не удалось начать транзакцию", err)
	}
	defer rollback()

	room, err := s.roomRepository.GetByUUID(ctx, exec, roomUUID)
	if err != nil {
		return nil, err
	}

	hasAccess, err := s.accessRepository.HasAccess(ctx, exec, roomUUID, actorEmail, model.AccessWrite)
	if err != nil {
		return nil, util.LogError("[RoomService] ошибка проверки доступа", err)
	}
	if hasAccess == false {
		return nil, fmt.Errorf("[RoomService] переименование %s: %w", roomUUID, apperr.ErrForbidden)
	}

	if err := s.roomRepository.UpdateTitle(ctx, exec, roomUUID, newTitle); err != nil {
		return nil, err
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[RoomService] ошибка коммита транзакции", err)
	}

	s.publish(roomUUID, model.RoomEvent{Type: model.EventTitleUpdated, Title: newTitle})

	room.Title = newTitle
	room.UpdatedAt = time.Now()

	return room, nil
}

// GrantAccess : выдаёт granteeEmail уровень level. Уведомление получателю
// записывается до ACCESS_UPDATED, затем сбрасывается кэш списков у всех
// identity — список получателя изменился.
func (s *RoomService) GrantAccess(ctx context.Context, roomUUID, granteeEmail string, level model.AccessLevel, actor model.Actor) error {
	if !level.Valid() {
		return fmt.Errorf("[RoomService] недопустимый уровень доступа: %s", level)
	}

	exec, rollback, commit, err := s.roomRepository.BeginTX(ctx)
	if err != nil {
		return util.LogError("[RoomService] не удалось начать транзакцию", err)
	}
	defer rollback()

	if _, err := s.roomRepository.GetByUUID(ctx, exec, roomUUID); err != nil {
		return err
	}

	hasAccess, err := s.accessRepository.HasAccess(ctx, exec, roomUUID, actor.Email, model.AccessWrite)
	if err != nil {
		return util.LogError("[RoomService] ошибка проверки доступа", err)
	}
	if hasAccess == false {
		return fmt.Errorf("[RoomService] выдача доступа %s: %w", roomUUID, apperr.ErrForbidden)
	}

	if err := s.accessRepository.SetAccess(ctx, exec, roomUUID, granteeEmail, level, actor.Email); err != nil {
		return err
	}

	if err := commit(); err != nil {
		return util.LogError("[RoomService] ошибка коммита транзакции", err)
	}

	// Порядок фиксирован: уведомление (и счётчик) -> broadcast -> сброс кэша.
	// Сессия, перечитавшая список по событию, уже видит новый счётчик.
	payload := model.NotificationPayload{
		"userType":  string(level),
		"title":     fmt.Sprintf("You have been granted %s access to the document by %s", level, actor.Name),
		"updatedBy": actor.Name,
		"avatar":    actor.Avatar,
		"email":     actor.Email,
	}
	if err := s.notificationService.Notify(ctx, granteeEmail, model.NotificationAccessGranted, payload); err != nil {
		log.Printf("[RoomService] %v: %v", apperr.ErrDelivery, err)
	}

	s.publish(roomUUID, model.RoomEvent{Type: model.EventAccessUpdated})
	s.invalidateAllLists(ctx)

	return nil
}

// RevokeAccess : удаляет granteeEmail из матрицы. Отзыв тихий:
// уведомление не создаётся, уведомляют только добавления.
func (s *RoomService) RevokeAccess(ctx context.Context, roomUUID, targetEmail, actorEmail string) error {
	exec, rollback, commit, err := s.roomRepository.BeginTX(ctx)
	if err != nil {
		return util.LogError("[RoomService] не удалось начать транзакцию", err)
	}
	defer rollback()

	if _, err := s.roomRepository.GetByUUID(ctx, exec, roomUUID); err != nil {
		return err
	}

	hasAccess, err := s.accessRepository.HasAccess(ctx, exec, roomUUID, actorEmail, model.AccessWrite)
	if err != nil {
		return util.LogError("[RoomService] ошибка проверки доступа", err)
	}
	if hasAccess == false {
		return fmt.Errorf("[RoomService] отзыв доступа %s: %w", roomUUID, apperr.ErrForbidden)
	}

	if err := s.accessRepository.RemoveAccess(ctx, exec, roomUUID, targetEmail); err != nil {
		return err
	}

	if err := commit(); err != nil {
		return util.LogError("[RoomService] ошибка коммита транзакции", err)
	}

	s.publish(roomUUID, model.RoomEvent{Type: model.EventAccessUpdated})
	s.invalidateAllLists(ctx)

	return nil
}

// Delete : удаляет комнату. DOCUMENT_DELETED уходит подключённым сессиям
// ДО физического удаления, чтобы они успели среагировать, пока комната ещё
// существует для финальных чтений. Удалить может любой участник с write.
func (s *RoomService) Delete(ctx context.Context, roomUUID, actorEmail string) (string, error) {
	exec, rollback, commit, err := s.roomRepository.BeginTX(ctx)
	if err != nil {
		return "", util.LogError("[RoomService] не удалось начать транзакцию", err)
	}
	defer rollback()

	if _, err := s.roomRepository.GetByUUID(ctx, exec, roomUUID); err != nil {
		return "", err
	}

	hasAccess, err := s.accessRepository.HasAccess(ctx, exec, roomUUID, actorEmail, model.AccessWrite)
	if err != nil {
		return "", util.LogError("[RoomService] ошибка проверки доступа", err)
	}
	if hasAccess == false {
		return "", fmt.Errorf("[RoomService] удаление %s: %w", roomUUID, apperr.ErrForbidden)
	}

	s.publish(roomUUID, model.RoomEvent{Type: model.EventRoomDeleted})

	if err := s.accessRepository.RemoveAllForRoom(ctx, exec, roomUUID); err != nil {
		return "", err
	}

	deletedUUID, err := s.roomRepository.Delete(ctx, exec, roomUUID)
	if err != nil {
		return "", err
	}

	if err := commit(); err != nil {
		return "", util.LogError("[RoomService] ошибка коммита транзакции", err)
	}

	s.transport.RemoveChannel(roomUUID)
	s.invalidateAllLists(ctx)

	log.Printf("[RoomService] комната %s успешно удалена", deletedUUID)

	return deletedUUID, nil
}

// ListForIdentity : комнаты, доступные identity. Кэш в Redis, при промахе
// список перечитывается из БД и кэшируется.
func (s *RoomService) ListForIdentity(ctx context.Context, email string) ([]model.Room, error) {
	rooms, err := s.cacheRepository.GetRoomList(ctx, email)
	if err != nil {
		log.Printf("[RoomService] ошибка кэширования: %v", err)
	}
	if rooms != nil {
		log.Printf("[RoomService] список комнат %s взят из кэша Redis", email)
		return rooms, nil
	}

	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, fmt.Errorf("[RoomService] database connection не найден в context")
	}

	rooms, err = s.roomRepository.ListForIdentity(ctx, db, email)
	if err != nil {
		return nil, util.LogError("[RoomService] не удалось получить список комнат", err)
	}
	if rooms == nil {
		rooms = []model.Room{}
	}

	if err := s.cacheRepository.SetRoomList(ctx, email, rooms); err != nil {
		log.Printf("[RoomService] ошибка кэширования списка комнат: %v", err)
	}

	return rooms, nil
}

// GetRoom : комната с матрицей доступа; требует read-доступа identity
func (s *RoomService) GetRoom(ctx context.Context, roomUUID, email string) (*model.Room, error) {
	db, ok := ctx.Value("db").(*config.Database)
	if ok == false {
		return nil, fmt.Errorf("[RoomService] database connection не найден в context")
	}

	room, err := s.roomRepository.GetByUUID(ctx, db, roomUUID)
	if err != nil {
		return nil, err
	}

	hasAccess, err := s.accessRepository.HasAccess(ctx, db, roomUUID, email, model.AccessRead)
	if err != nil {
		return nil, util.LogError("[RoomService] ошибка проверки доступа", err)
	}
	if hasAccess == false {
		return nil, fmt.Errorf("[RoomService] комната %s: %w", roomUUID, apperr.ErrForbidden)
	}

	accessors, err := s.accessRepository.ListAccessors(ctx, db, roomUUID)
	if err != nil {
		return nil, err
	}
	room.Accessors = accessors

	return room, nil
}

// publish : best-effort рассылка. Ошибка доставки логируется и
// проглатывается: мутация уже закоммичена, откатывать её из-за fan-out нельзя.
func (s *RoomService) publish(roomUUID string, event model.RoomEvent) {
	if err := s.transport.Publish(roomUUID, event); err != nil {
		log.Printf("[RoomService] %v: %v", apperr.ErrDelivery, err)
	}
}

func (s *RoomService) invalidateAllLists(ctx context.Context) {
	if err := s.cacheRepository.InvalidateAllRoomLists(ctx); err != nil {
		log.Printf("[RoomService] ошибка сброса кэша списков: %v", err)
	}
}
