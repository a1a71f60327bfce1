package gateway

// Frame types pushed to clients. Inbound frame types live in the ws transport;
// these are the ones the gateway itself fans out.
const (
	TypeRoomState      = "room_state"      // membership snapshot after a join
	TypeMemberJoined   = "member_joined"   // a user joined the room
	TypeMemberLeft     = "member_left"     // a user left the room
	TypeMessage        = "message"         // chat message
	TypeMessageAck     = "message_ack"     // sender-only receipt with the stored id
	TypeMessageDeleted = "message_deleted" // a stored message was removed
	TypeMessageUpdated = "message_updated" // a stored message was edited
	TypeNotification   = "notification"    // personal or platform-wide notice
	TypeError          = "error"           // operation failure, sender only
)

// Envelope is the unit of fan-out: a typed frame with an opaque payload. The
// dispatcher never looks inside Payload.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type MemberEventPayload struct {
	RoomID string `json:"room_id"`
	UserID int64  `json:"user_id"`
}

type MessagePayload struct {
	RoomID    string `json:"room_id"`
	MessageID string `json:"message_id"`
	SenderID  int64  `json:"sender_id"`
	Content   string `json:"content"`
	TSUnix    int64  `json:"ts_unix"`
}

type MessageAckPayload struct {
	MessageID string `json:"message_id"`
}

type MessageRefPayload struct {
	RoomID    string `json:"room_id"`
	MessageID string `json:"message_id"`
}

type RoomStatePayload struct {
	RoomID  string  `json:"room_id"`
	Members []int64 `json:"members"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
