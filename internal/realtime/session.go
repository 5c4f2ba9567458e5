package realtime

import (
	"log"
	"sync"
	"time"

	"github.com/AkshayTiwari27/LiveDocs/internal/model"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

// WSSession : сессия поверх gorilla/websocket. События кладутся в буферный
// канал; писатель один (WritePump), поэтому порядок из буфера сохраняется.
type WSSession struct {
	id   string
	conn *websocket.Conn
	send chan model.RoomEvent

	closeOnce sync.Once
	done      chan struct{}
}

func NewWSSession(conn *websocket.Conn) *WSSession {
	return &WSSession{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan model.RoomEvent, sendBufferSize),
		done: make(chan struct{}),
	}
}

func (s *WSSession) ID() string {
	return s.id
}

// Send : неблокирующая постановка события в буфер сессии.
// false — буфер полон или сессия закрыта, событие отброшено.
func (s *WSSession) Send(event model.RoomEvent) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- event:
		return true
	default:
		return false
	}
}

func (s *WSSession) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// WritePump : единственный писатель в соединение. Пишет события из буфера
// в порядке поступления и пингует клиента.
func (s *WSSession) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case <-s.done:
			return
		case event := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(event); err != nil {
				log.Printf("[WSSession] ошибка записи в сессию %s: %v", s.id, err)
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump : вычитывает входящие кадры до закрытия соединения клиентом.
// Клиентских сообщений протокол не предусматривает, кадры игнорируются.
func (s *WSSession) ReadPump(onClose func()) {
	defer func() {
		onClose()
		s.Close()
	}()

	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
