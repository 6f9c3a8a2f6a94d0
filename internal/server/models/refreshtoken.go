package models

import "time"

// RefreshToken is the opaque credential a client trades for a fresh token
// pair. Each use rotates it: the old row is deleted and a new one issued.
type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
