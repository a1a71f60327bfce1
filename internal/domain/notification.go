package domain

import "time"

type Notification struct {
	ID        string     `db:"id"`
	UserID    int64      `db:"user_id"`
	Kind      string     `db:"kind"`
	Body      string     `db:"body"`
	Link      *string    `db:"link"`
	ReadAt    *time.Time `db:"read_at"`
	CreatedAt time.Time  `db:"created_at"`
}
