package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/Epsilon-byte/ScholarsUnited/internal/domain"
)

const maxMessageLen = 4000

var (
	ErrEmptyMessage   = errors.New("empty message")
	ErrMessageTooLong = errors.New("message too long")
)

type MessageRepo interface {
	Create(ctx context.Context, roomID string, senderID int64, content string) (*domain.ChatMessage, error)
	Delete(ctx context.Context, roomID, messageID string, senderID int64) error
	Update(ctx context.Context, roomID, messageID string, senderID int64, content string) (*domain.ChatMessage, error)
	History(ctx context.Context, roomID, after string, limit int) ([]domain.ChatMessage, string, error)
}

// ChatService validates and persists chat content. It is the storage
// collaborator of the gateway: the gateway broadcasts only what came back from
// here.
type ChatService struct {
	messages MessageRepo
}

func NewChatService(messages MessageRepo) *ChatService {
	return &ChatService{messages: messages}
}

// CreateMessage implements gateway.MessageStore.
func (s *ChatService) CreateMessage(ctx context.Context, roomID string, senderID int64, content string) (*domain.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > maxMessageLen {
		return nil, ErrMessageTooLong
	}

	return s.messages.Create(ctx, roomID, senderID, content)
}

func (s *ChatService) DeleteMessage(ctx context.Context, roomID, messageID string, senderID int64) error {
	return s.messages.Delete(ctx, roomID, messageID, senderID)
}

func (s *ChatService) UpdateMessage(ctx context.Context, roomID, messageID string, senderID int64, content string) (*domain.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > maxMessageLen {
		return nil, ErrMessageTooLong
	}

	return s.messages.Update(ctx, roomID, messageID, senderID, content)
}

func (s *ChatService) History(ctx context.Context, roomID, after string, limit int) ([]domain.ChatMessage, string, error) {
	return s.messages.History(ctx, roomID, after, limit)
}
