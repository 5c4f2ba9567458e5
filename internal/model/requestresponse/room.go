package requestresponse

import (
	"time"

	"github.com/AkshayTiwari27/LiveDocs/internal/model"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type RenameRoomRequest struct {
	Title string `json:"title"`
}

type ShareRoomRequest struct {
	Email string `json:"email"`
	Level string `json:"level"` // read | write
}

type RemoveAccessRequest struct {
	Email string `json:"email"`
}

type RoomResponse struct {
	UUID         string                       `json:"uuid"`
	Title        string                       `json:"title"`
	CreatorUUID  string                       `json:"creator_uuid"`
	CreatorEmail string                       `json:"creator_email"`
	Accessors    map[string]model.AccessLevel `json:"accessors,omitempty"`
	CreatedAt    time.Time                    `json:"created_at"`
}

type ListRoomsResponse struct {
	Data []RoomResponse `json:"data"`
}

type DeleteRoomResponse struct {
	UUID    string `json:"uuid"`
	Deleted bool   `json:"deleted"`
}

// NewRoomResponse : собирает ответ из доменной модели
func NewRoomResponse(room *model.Room) RoomResponse {
	return RoomResponse{
		UUID:         room.UUID,
		Title:        room.Title,
		CreatorUUID:  room.CreatorUUID,
		CreatorEmail: room.CreatorEmail,
		Accessors:    room.Accessors,
		CreatedAt:    room.CreatedAt,
	}
}
