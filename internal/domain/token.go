package domain

import "time"

// CancellationToken is a single-use capability allowing anonymous
// self-service cancellation of one appointment without authentication.
// Created atomically with its appointment; expires 10 minutes before start.
type CancellationToken struct {
	ID            int64
	AppointmentID int64
	Secret        string
	ExpiresAt     time.Time
	UsedAt        *time.Time
	CreatedAt     time.Time
}

// IsUsable reports whether the token can still be consumed
func (t *CancellationToken) IsUsable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
