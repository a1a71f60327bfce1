package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Room ids encode the chat context they belong to: "event-5" is the chat of
// event 5, "group-12" the chat of study group 12.
const (
	roomPrefixEvent = "event-"
	roomPrefixGroup = "group-"
)

type ParticipantRepository struct {
	db *pgxpool.Pool
}

func NewParticipantRepository(db *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// IsParticipant reports whether the user belongs to the context behind the
// room: accepted event participants for event rooms, group members for study
// group rooms. Unknown room shapes are simply not participations.
func (r *ParticipantRepository) IsParticipant(ctx context.Context, userID int64, roomID string) (bool, error) {
	switch {
	case strings.HasPrefix(roomID, roomPrefixEvent):
		eventID, err := strconv.ParseInt(strings.TrimPrefix(roomID, roomPrefixEvent), 10, 64)
		if err != nil {
			return false, nil
		}
		var exists bool
		err = r.db.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM event_participants
				WHERE event_id=$1 AND user_id=$2 AND status='accepted'
			)`, eventID, userID).Scan(&exists)
		return exists, err

	case strings.HasPrefix(roomID, roomPrefixGroup):
		groupID, err := strconv.ParseInt(strings.TrimPrefix(roomID, roomPrefixGroup), 10, 64)
		if err != nil {
			return false, nil
		}
		var exists bool
		err = r.db.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM study_group_members
				WHERE group_id=$1 AND user_id=$2
			)`, groupID, userID).Scan(&exists)
		return exists, err
	}

	return false, nil
}

// ListByRoom returns the ids of everyone allowed into the room, not just those
// currently connected.
func (r *ParticipantRepository) ListByRoom(ctx context.Context, roomID string) ([]int64, error) {
	var (
		query string
		id    int64
	)
	switch {
	case strings.HasPrefix(roomID, roomPrefixEvent):
		n, err := strconv.ParseInt(strings.TrimPrefix(roomID, roomPrefixEvent), 10, 64)
		if err != nil {
			return nil, nil
		}
		id = n
		query = `SELECT user_id FROM event_participants WHERE event_id=$1 AND status='accepted' ORDER BY user_id`
	case strings.HasPrefix(roomID, roomPrefixGroup):
		n, err := strconv.ParseInt(strings.TrimPrefix(roomID, roomPrefixGroup), 10, 64)
		if err != nil {
			return nil, nil
		}
		id = n
		query = `SELECT user_id FROM study_group_members WHERE group_id=$1 ORDER BY user_id`
	default:
		return nil, nil
	}

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var uid int64
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		out = append(out, uid)
	}
	return out, rows.Err()
}
