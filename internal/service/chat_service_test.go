package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Epsilon-byte/ScholarsUnited/internal/domain"
)

type fakeMessageRepo struct {
	created []domain.ChatMessage
	err     error
}

func (r *fakeMessageRepo) Create(_ context.Context, roomID string, senderID int64, content string) (*domain.ChatMessage, error) {
	if r.err != nil {
		return nil, r.err
	}
	msg := domain.ChatMessage{
		ID:        "m-1",
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	r.created = append(r.created, msg)
	return &msg, nil
}

func (r *fakeMessageRepo) Delete(context.Context, string, string, int64) error {
	return r.err
}

func (r *fakeMessageRepo) Update(_ context.Context, roomID, messageID string, senderID int64, content string) (*domain.ChatMessage, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &domain.ChatMessage{ID: messageID, RoomID: roomID, SenderID: senderID, Content: content}, nil
}

func (r *fakeMessageRepo) History(context.Context, string, string, int) ([]domain.ChatMessage, string, error) {
	return nil, "", r.err
}

func TestCreateMessageTrimsAndStores(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewChatService(repo)

	msg, err := svc.CreateMessage(context.Background(), "event-5", 1, "  hello  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if msg.Content != "hello" {
		t.Fatalf("expected trimmed content, got %q", msg.Content)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one stored message, got %d", len(repo.created))
	}
}

func TestCreateMessageRejectsEmpty(t *testing.T) {
	svc := NewChatService(&fakeMessageRepo{})

	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := svc.CreateMessage(context.Background(), "event-5", 1, content); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("content %q: expected ErrEmptyMessage, got %v", content, err)
		}
	}
}

func TestCreateMessageRejectsOversize(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewChatService(repo)

	long := strings.Repeat("я", maxMessageLen+1)
	if _, err := svc.CreateMessage(context.Background(), "event-5", 1, long); !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("expected ErrMessageTooLong, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("oversize content must never reach the repo")
	}

	// the limit counts runes, not bytes
	atLimit := strings.Repeat("я", maxMessageLen)
	if _, err := svc.CreateMessage(context.Background(), "event-5", 1, atLimit); err != nil {
		t.Fatalf("content at the limit must pass: %v", err)
	}
}

func TestUpdateMessageValidatesLikeCreate(t *testing.T) {
	svc := NewChatService(&fakeMessageRepo{})

	if _, err := svc.UpdateMessage(context.Background(), "event-5", "m-1", 1, "  "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}

	msg, err := svc.UpdateMessage(context.Background(), "event-5", "m-1", 1, " edited ")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if msg.Content != "edited" {
		t.Fatalf("expected trimmed content, got %q", msg.Content)
	}
}

func TestCreateMessagePropagatesRepoError(t *testing.T) {
	want := errors.New("boom")
	svc := NewChatService(&fakeMessageRepo{err: want})

	if _, err := svc.CreateMessage(context.Background(), "event-5", 1, "hi"); !errors.Is(err, want) {
		t.Fatalf("expected repo error, got %v", err)
	}
}
