package realtime

import (
	"fmt"
	"log"
	"sync"

	"github.com/AkshayTiwari27/LiveDocs/internal/apperr"
	"github.com/AkshayTiwari27/LiveDocs/internal/model"
	"github.com/AkshayTiwari27/LiveDocs/internal/ports"
)

// Hub : реестр живых сессий по каналам комнат. Доставка best-effort:
// не более одного раза на сессию, без повторов. События одной комнаты
// уходят сессиям в порядке вызовов Publish (Publish сериализуется мьютексом);
// порядок между разными комнатами не гарантируется.
type Hub struct {
	mu       sync.Mutex
	channels map[string]map[string]ports.Session
}

func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[string]ports.Session),
	}
}

func (h *Hub) CreateChannel(roomUUID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.channels[roomUUID]; !ok {
		h.channels[roomUUID] = make(map[string]ports.Session)
	}
}

// RemoveChannel : закрывает все сессии канала и убирает его из реестра
func (h *Hub) RemoveChannel(roomUUID string) {
	h.mu.Lock()
	sessions := h.channels[roomUUID]
	delete(h.channels, roomUUID)
	h.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

// Subscribe : подключает сессию к каналу комнаты. Сессия видит только
// события, отправленные после подписки.
func (h *Hub) Subscribe(roomUUID string, session ports.Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel, ok := h.channels[roomUUID]
	if !ok {
		return fmt.Errorf("[Hub] канал %s: %w", roomUUID, apperr.ErrNotFound)
	}
	channel[session.ID()] = session

	return nil
}

func (h *Hub) Unsubscribe(roomUUID, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if channel, ok := h.channels[roomUUID]; ok {
		delete(channel, sessionID)
	}
}

// Publish : рассылает событие всем сессиям канала. Сессии с переполненным
// буфером пропускают событие (логируется, не повторяется): устойчивое
// состояние всё равно будет прочитано прямым запросом.
func (h *Hub) Publish(roomUUID string, event model.RoomEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel, ok := h.channels[roomUUID]
	if !ok {
		// канал не создавался или уже удалён — некому доставлять
		return nil
	}

	for id, session := range channel {
		if !session.Send(event) {
			log.Printf("[Hub] сессия %s пропустила событие %s комнаты %s", id, event.Type, roomUUID)
		}
	}

	return nil
}
