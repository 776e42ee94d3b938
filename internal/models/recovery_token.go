package models

import "time"

// RecoveryToken — одноразовый токен восстановления пароля, привязан к email.
type RecoveryToken struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Token     string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
