package requestresponse

import "github.com/AkshayTiwari27/LiveDocs/internal/model"

type ListNotificationsResponse struct {
	Data []model.Notification `json:"data"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type MarkReadResponse struct {
	Success bool `json:"success"`
}
