package domain

import "time"

// Session describes an issued bearer token and the server-side record backing it.
type Session struct {
	ID        string
	AccountID int64
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
