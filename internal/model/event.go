package model

// EventType : тип broadcast-события комнаты
type EventType string

const (
	EventAccessUpdated EventType = "ACCESS_UPDATED"
	EventTitleUpdated  EventType = "TITLE_UPDATED"
	EventRoomDeleted   EventType = "DOCUMENT_DELETED"
)

// RoomEvent : эфемерное событие, доставляется только сессиям, подключённым
// к каналу комнаты в момент отправки. Не персистится: сессии, подключившиеся
// позже, читают актуальное состояние напрямую.
type RoomEvent struct {
	Type  EventType `json:"type"`
	Title string    `json:"title,omitempty"` // только для TITLE_UPDATED
}
