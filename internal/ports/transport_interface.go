package ports

import "github.com/AkshayTiwari27/LiveDocs/internal/model"

// Session : живая сессия, подключённая к каналу комнаты.
// Send возвращает false, если событие не доставлено (буфер полон или
// сессия закрыта) — доставка best-effort, повторов нет.
type Session interface {
	ID() string
	Send(event model.RoomEvent) bool
	Close()
}

// Transport : внешний real-time транспорт. Publish доставляет событие всем
// сессиям канала не более одного раза на сессию; события одной комнаты
// приходят в порядке отправки, между комнатами порядок не гарантируется.
type Transport interface {
	CreateChannel(roomUUID string)
	RemoveChannel(roomUUID string)
	Subscribe(roomUUID string, session Session) error
	Unsubscribe(roomUUID, sessionID string)
	Publish(roomUUID string, event model.RoomEvent) error
}
