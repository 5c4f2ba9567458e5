package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	requestresponse "github.com/AkshayTiwari27/LiveDocs/internal/model/requestresponse"
	"github.com/AkshayTiwari27/LiveDocs/internal/ports"
	"github.com/AkshayTiwari27/LiveDocs/internal/security"
	"github.com/AkshayTiwari27/LiveDocs/internal/util"
)

type NotificationHandler struct {
	ports.NotificationService
}

func NewNotificationHandler(notificationService ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService}
}

// ListNotifications godoc
// @Summary Уведомления пользователя
// @Tags Notifications
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListNotificationsResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Router /api/notifications [get]
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	notifications, err := h.NotificationService.ListForRecipient(ctx, claims.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.ListNotificationsResponse{Data: notifications})
}

// UnreadCount godoc
// @Summary Счётчик непрочитанных уведомлений
// @Description Монотонно растёт при новых уведомлениях; клиент перечитывает список комнат на каждом росте.
// @Tags Notifications
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UnreadCountResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Router /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	count, err := h.NotificationService.UnreadCount(ctx, claims.Email)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.UnreadCountResponse{Count: count})
}

// MarkAllRead godoc
// @Summary Пометить все уведомления прочитанными
// @Description Сбрасывает счётчик непрочитанных; уменьшение счётчика не вызывает перечитывания у клиента.
// @Tags Notifications
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.MarkReadResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Router /api/notifications/read [post]
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	if err := h.NotificationService.MarkAllRead(ctx, claims.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(requestresponse.MarkReadResponse{Success: true})
}
