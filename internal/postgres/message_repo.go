package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Epsilon-byte/ScholarsUnited/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, roomID string, senderID int64, content string) (*domain.ChatMessage, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO event_messages (room_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, room_id, sender_id, content, created_at
	`, roomID, senderID, content)

	var m domain.ChatMessage
	if err := row.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) Delete(ctx context.Context, roomID, messageID string, senderID int64) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM event_messages WHERE id=$1 AND room_id=$2 AND sender_id=$3`,
		messageID, roomID, senderID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

func (r *MessageRepository) Update(ctx context.Context, roomID, messageID string, senderID int64, content string) (*domain.ChatMessage, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE event_messages
		SET content=$4, updated_at=now()
		WHERE id=$1 AND room_id=$2 AND sender_id=$3
		RETURNING id, room_id, sender_id, content, created_at
	`, messageID, roomID, senderID, content)

	var m domain.ChatMessage
	if err := row.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}

// History returns the room's messages newest first with cursor pagination
// (created_at,id DESC).
func (r *MessageRepository) History(ctx context.Context, roomID, after string, limit int) ([]domain.ChatMessage, string, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	cur, err := DecodeCursor(after)
	if err != nil {
		return nil, "", fmt.Errorf("decode cursor: %w", err)
	}

	const baseQuery = `
		SELECT id, room_id, sender_id, content, created_at
		FROM event_messages
		WHERE room_id = $1
		  AND (
		    $2::timestamptz IS NULL
		    OR created_at < $2
		    OR (created_at = $2 AND id < $3)
		  )
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	var createdAt any
	var id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	rows, err := r.db.Query(ctx, baseQuery, roomID, createdAt, id, limit)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, "", err
		}
		out = append(out, m)
	}

	var next string
	if len(out) == limit {
		last := out[len(out)-1]
		next = EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return out, next, rows.Err()
}
