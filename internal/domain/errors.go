package domain

import "errors"

var (
	ErrInvalidIdentity      = errors.New("invalid user identity")
	ErrAlreadyAuthenticated = errors.New("connection already authenticated")
	ErrNotAuthenticated     = errors.New("connection not authenticated")
	ErrUnauthorized         = errors.New("user is not a participant of the room")
	ErrNotJoined            = errors.New("connection has not joined the room")
	ErrConnectionClosed     = errors.New("connection closed")
	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrRoomNotFound         = errors.New("room not found")
	ErrMessageNotFound      = errors.New("message not found")
)
