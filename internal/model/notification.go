package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NotificationKind : вид уведомления
type NotificationKind string

const (
	NotificationAccessGranted NotificationKind = "access-granted"
	NotificationTitleChanged  NotificationKind = "title-changed"
	NotificationRoomDeleted   NotificationKind = "document-deleted"
)

// NotificationPayload : произвольные структурированные данные уведомления
// (имя и аватар выдавшего доступ, заголовок и т.д.). Хранится как jsonb.
type NotificationPayload map[string]interface{}

func (p NotificationPayload) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

func (p *NotificationPayload) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = nil
		return nil
	default:
		return fmt.Errorf("неподдерживаемый тип payload: %T", src)
	}
}

// Notification : адресное долговременное уведомление. Переживает отключение
// получателя и живёт до явного прочтения.
type Notification struct {
	UUID           string              `db:"uuid" json:"uuid"`
	RecipientEmail string              `db:"recipient_email" json:"recipient_email"`
	Kind           NotificationKind    `db:"kind" json:"kind"`
	Payload        NotificationPayload `db:"payload" json:"payload"`
	Read           bool                `db:"read" json:"read"`
	CreatedAt      time.Time           `db:"created_at" json:"created_at"`
}
