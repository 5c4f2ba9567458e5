package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/AkshayTiwari27/LiveDocs/internal/apperr"
	"github.com/AkshayTiwari27/LiveDocs/internal/model"
	requestresponse "github.com/AkshayTiwari27/LiveDocs/internal/model/requestresponse"
	"github.com/AkshayTiwari27/LiveDocs/internal/ports"
	"github.com/AkshayTiwari27/LiveDocs/internal/security"
	"github.com/AkshayTiwari27/LiveDocs/internal/util"
	"github.com/go-chi/chi/v5"

	"context"
)

type RoomHandler struct {
	ports.RoomService
}

func NewRoomHandler(roomService ports.RoomService) *RoomHandler {
	return &RoomHandler{roomService}
}

// handleServiceError : сопоставляет доменные ошибки с HTTP статусами
func handleServiceError(w http.ResponseWriter, err error) {
	log.Println(err)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		util.HandleError(w, "комната не найдена", http.StatusNotFound)
	case errors.Is(err, apperr.ErrForbidden):
		util.HandleError(w, "доступ запрещён", http.StatusForbidden)
	case errors.Is(err, apperr.ErrSelfDemotion):
		util.HandleError(w, "нельзя понизить доступ создателя комнаты", http.StatusConflict)
	case errors.Is(err, apperr.ErrSelfRemoval):
		util.HandleError(w, "нельзя удалить создателя из комнаты", http.StatusConflict)
	default:
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}

// CreateRoom godoc
// @Summary Создание новой комнаты
// @Description Создаёт комнату с заголовком "Untitled"; создатель получает write-доступ.
// @Tags Rooms
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.RoomResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/rooms [post]
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	room, err := h.RoomService.Create(ctx, claims.UserUUID, claims.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(requestresponse.NewRoomResponse(room))
}

// ListRooms godoc
// @Summary Список доступных комнат
// @Description Возвращает комнаты, к которым у пользователя есть доступ не ниже read.
// @Tags Rooms
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListRoomsResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/rooms [get]
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	rooms, err := h.RoomService.ListForIdentity(ctx, claims.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response := requestresponse.ListRoomsResponse{Data: make([]requestresponse.RoomResponse, 0, len(rooms))}
	for i := range rooms {
		response.Data = append(response.Data, requestresponse.NewRoomResponse(&rooms[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetRoom godoc
// @Summary Комната по id
// @Description Возвращает комнату с матрицей доступа; требует read-доступа.
// @Tags Rooms
// @Produce json
// @Param room_id path string true "ID комнаты"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.RoomResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Failure 404 {object} requestresponse.ErrorResponse "Комната не найдена"
// @Router /api/rooms/{room_id} [get]
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	roomID := chi.URLParam(r, "room_id")

	room, err := h.RoomService.GetRoom(ctx, roomID, claims.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.NewRoomResponse(room))
}

// RenameRoom godoc
// @Summary Переименование комнаты
// @Description Обновляет заголовок; подключённые сессии получают TITLE_UPDATED.
// @Tags Rooms
// @Accept json
// @Produce json
// @Param room_id path string true "ID комнаты"
// @Param request body requestresponse.RenameRoomRequest true "Новый заголовок"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.RoomResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Failure 404 {object} requestresponse.ErrorResponse "Комната не найдена"
// @Router /api/rooms/{room_id}/title [put]
func (h *RoomHandler) RenameRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var request requestresponse.RenameRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}
	if request.Title == "" {
		util.HandleError(w, "заголовок не может быть пустым", http.StatusBadRequest)
		return
	}

	roomID := chi.URLParam(r, "room_id")

	room, err := h.RoomService.Rename(ctx, roomID, request.Title, claims.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.NewRoomResponse(room))
}

// ShareRoom godoc
// @Summary Выдача доступа к комнате
// @Description Выдаёт email уровень read или write; получателю уходит уведомление.
// @Tags Rooms
// @Accept json
// @Produce json
// @Param room_id path string true "ID комнаты"
// @Param request body requestresponse.ShareRoomRequest true "Email и уровень доступа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} map[string]bool
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Failure 404 {object} requestresponse.ErrorResponse "Комната не найдена"
// @Failure 409 {object} requestresponse.ErrorResponse "Нельзя понизить доступ создателя"
// @Router /api/rooms/{room_id}/share [post]
func (h *RoomHandler) ShareRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var request requestresponse.ShareRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	level := model.AccessLevel(request.Level)
	if !level.Valid() {
		util.HandleError(w, "уровень доступа должен быть read или write", http.StatusBadRequest)
		return
	}
	if request.Email == "" {
		util.HandleError(w, "email не может быть пустым", http.StatusBadRequest)
		return
	}

	roomID := chi.URLParam(r, "room_id")
	actor := model.Actor{
		UUID:   claims.UserUUID,
		Email:  claims.Email,
		Name:   claims.Name,
		Avatar: claims.Avatar,
	}

	if err := h.RoomService.GrantAccess(ctx, roomID, request.Email, level, actor); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// RemoveAccess godoc
// @Summary Отзыв доступа к комнате
// @Description Удаляет email из матрицы доступа. Отзыв тихий, без уведомления.
// @Tags Rooms
// @Accept json
// @Produce json
// @Param room_id path string true "ID комнаты"
// @Param request body requestresponse.RemoveAccessRequest true "Email"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} map[string]bool
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Failure 404 {object} requestresponse.ErrorResponse "Комната не найдена"
// @Failure 409 {object} requestresponse.ErrorResponse "Нельзя удалить создателя"
// @Router /api/rooms/{room_id}/remove-access [post]
func (h *RoomHandler) RemoveAccess(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var request requestresponse.RemoveAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	roomID := chi.URLParam(r, "room_id")

	if err := h.RoomService.RevokeAccess(ctx, roomID, request.Email, claims.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// DeleteRoom godoc
// @Summary Удаление комнаты
// @Description Рассылает DOCUMENT_DELETED подключённым сессиям и удаляет комнату.
// @Tags Rooms
// @Produce json
// @Param room_id path string true "ID комнаты"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.DeleteRoomResponse
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Failure 404 {object} requestresponse.ErrorResponse "Комната не найдена"
// @Router /api/rooms/{room_id} [delete]
func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	roomID := chi.URLParam(r, "room_id")

	deletedUUID, err := h.RoomService.Delete(ctx, roomID, claims.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.DeleteRoomResponse{UUID: deletedUUID, Deleted: true})
}
