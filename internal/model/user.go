package model

import "time"

// User represents an account as stored in the `users` table.  The
// quota fields live on the user row so that reservations can lock a
// single record when admitting a generation request.
//
// Fields:
//
//	ID            – application level UUID.
//	Username      – unique login name.
//	Email         – unique, lower-cased email address.
//	PasswordHash  – bcrypt hash; never serialized.
//	IsAdmin       – grants access to the admin surface.
//	DesignsLimit  – number of generations allowed (>= 0).
//	DesignsUsed   – number of generations consumed (>= 0).
//	IsUnlimited   – bypasses DesignsLimit entirely.
//	EmailVerified – set for federated logins.
//	Measurements  – body measurements used for size suggestions; nil until saved.
//	CreatedAt     – timestamp of creation.
type User struct {
	ID            string        `json:"id"`
	Username      string        `json:"username"`
	Email         string        `json:"email"`
	PasswordHash  string        `json:"-"`
	IsAdmin       bool          `json:"is_admin"`
	DesignsLimit  int           `json:"designs_limit"`
	DesignsUsed   int           `json:"designs_used"`
	IsUnlimited   bool          `json:"is_unlimited"`
	EmailVerified bool          `json:"email_verified"`
	Measurements  *Measurements `json:"measurements,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Measurements are a user's body measurements in centimetres and
// kilograms.  Unset fields are omitted.
type Measurements struct {
	Chest         *float64 `json:"chest,omitempty"`
	Waist         *float64 `json:"waist,omitempty"`
	Hips          *float64 `json:"hips,omitempty"`
	Height        *float64 `json:"height,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	PreferredSize string   `json:"preferred_size,omitempty"`
}

// DefaultDesignsLimit is granted to every new account.
const DefaultDesignsLimit = 3

// UnlimitedRemaining is reported as designs_remaining for unlimited users.
const UnlimitedRemaining = 999

// Quota is the view of a user's generation counters.
type Quota struct {
	UserID      string `json:"-"`
	Limit       int    `json:"designs_limit"`
	Used        int    `json:"designs_used"`
	IsUnlimited bool   `json:"is_unlimited"`
}

// Remaining returns how many generations are left, never negative.
func (q Quota) Remaining() int {
	if q.IsUnlimited {
		return UnlimitedRemaining
	}
	if r := q.Limit - q.Used; r > 0 {
		return r
	}
	return 0
}

// QuotaOf projects the quota counters of a user.
func QuotaOf(u User) Quota {
	return Quota{UserID: u.ID, Limit: u.DesignsLimit, Used: u.DesignsUsed, IsUnlimited: u.IsUnlimited}
}
