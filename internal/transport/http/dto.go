package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageItem struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryResponse struct {
	Items      []MessageItem `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

type PostMessageRequest struct {
	Content string `json:"content"`
}

type UpdateMessageRequest struct {
	Content string `json:"content"`
}

type MembersResponse struct {
	RoomID  string  `json:"room_id"`
	Members []int64 `json:"members"`
}

type PresenceResponse struct {
	UserID int64 `json:"user_id"`
	Online bool  `json:"online"`
}

type NotifyRequest struct {
	Kind string  `json:"kind"`
	Body string  `json:"body"`
	Link *string `json:"link,omitempty"`
}

type NotificationItem struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body"`
	Link      *string   `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationsResponse struct {
	Items []NotificationItem `json:"items"`
}
