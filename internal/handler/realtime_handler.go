package handler

import (
	"log"
	"net/http"

	"github.com/AkshayTiwari27/LiveDocs/internal/ports"
	"github.com/AkshayTiwari27/LiveDocs/internal/realtime"
	"github.com/AkshayTiwari27/LiveDocs/internal/security"
	"github.com/AkshayTiwari27/LiveDocs/internal/util"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// same-origin политика обеспечивается JWT в запросе апгрейда
	CheckOrigin: func(r *http.Request) bool { return true },
}

type RealtimeHandler struct {
	roomService ports.RoomService
	transport   ports.Transport
}

func NewRealtimeHandler(roomService ports.RoomService, transport ports.Transport) *RealtimeHandler {
	return &RealtimeHandler{roomService: roomService, transport: transport}
}

// AttachSession godoc
// @Summary Подключение live-сессии к каналу комнаты
// @Description Апгрейд до WebSocket; сессия получает события комнаты, отправленные после подписки.
// @Tags Realtime
// @Param room_id path string true "ID комнаты"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 101 {string} string "Switching Protocols"
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Failure 404 {object} requestresponse.ErrorResponse "Комната не найдена"
// @Router /ws/rooms/{room_id} [get]
func (h *RealtimeHandler) AttachSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	roomID := chi.URLParam(r, "room_id")

	// read-доступ обязателен до апгрейда
	if _, err := h.roomService.GetRoom(ctx, roomID, claims.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[RealtimeHandler] ошибка апгрейда соединения: %v", err)
		return
	}

	session := realtime.NewWSSession(conn)

	// канал мог не пережить рестарт сервера, создаём лениво
	h.transport.CreateChannel(roomID)
	if err := h.transport.Subscribe(roomID, session); err != nil {
		log.Printf("[RealtimeHandler] ошибка подписки сессии: %v", err)
		session.Close()
		return
	}

	log.Printf("[RealtimeHandler] сессия %s подключена к комнате %s", session.ID(), roomID)

	go session.WritePump()
	go session.ReadPump(func() {
		h.transport.Unsubscribe(roomID, session.ID())
		log.Printf("[RealtimeHandler] сессия %s отключена от комнаты %s", session.ID(), roomID)
	})
}
