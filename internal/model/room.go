package model

import "time"

// AccessLevel : уровень доступа к комнате. Отсутствие записи в матрице
// означает отсутствие доступа, поэтому отдельной константы "no-access" нет.
type AccessLevel string

const (
	AccessRead  AccessLevel = "read"
	AccessWrite AccessLevel = "write"
)

// Valid : true для уровней, которые можно записать в матрицу доступа
func (l AccessLevel) Valid() bool {
	return l == AccessRead || l == AccessWrite
}

// Satisfies : true, если уровень l не ниже требуемого min (read < write)
func (l AccessLevel) Satisfies(min AccessLevel) bool {
	if min == AccessRead {
		return l == AccessRead || l == AccessWrite
	}
	return l == AccessWrite
}

type Room struct {
	UUID         string     `db:"uuid" json:"uuid"`
	Title        string     `db:"title" json:"title"`
	CreatorUUID  string     `db:"creator_uuid" json:"creator_uuid"`
	CreatorEmail string     `db:"creator_email" json:"creator_email"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`

	// Accessors : матрица доступа email -> уровень. Заполняется отдельным
	// запросом, в таблице rooms не хранится.
	Accessors map[string]AccessLevel `db:"-" json:"accessors,omitempty"`
}

// RoomAccess : одна запись матрицы доступа (таблица room_accesses)
type RoomAccess struct {
	RoomUUID  string      `db:"room_uuid" json:"room_uuid"`
	Email     string      `db:"email" json:"email"`
	Level     AccessLevel `db:"level" json:"level"`
	GrantedBy string      `db:"granted_by" json:"granted_by"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// Actor : кто выполняет мутацию; имя и аватар попадают в payload уведомления
type Actor struct {
	UUID   string `json:"uuid"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}
