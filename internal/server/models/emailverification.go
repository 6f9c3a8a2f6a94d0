package models

import "time"

// EmailVerification tracks a short-lived signup code sent to an email
// address. The code itself is stored only as a hash. Attempts counts how
// many codes were requested for the address within the current window.
type EmailVerification struct {
	ID        int64
	Email     string
	CodeHash  string
	Attempts  int
	Verified  bool
	ExpiresAt time.Time
	CreatedAt time.Time
}
