package model

import "time"

// QuotaHold represents an in-flight reservation of one generation slot.
// A hold is taken before the image service is called and is either
// committed (converted into designs_used) or cancelled when the render
// fails.  Holds expire automatically at their expires_at timestamp so a
// crashed request cannot pin a slot forever.
//
// Fields:
//
//	ID        – application level UUID.
//	UserID    – owner of the slot.
//	Token     – request identifier; commit and cancel are keyed by it.
//	ExpiresAt – when the hold stops counting against the quota.
//	CreatedAt – when the hold was created.
type QuotaHold struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
