package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserToken — выданный bearer-токен вместе со сроком действия.
// Не сохраняется на сервере: клиент предъявляет его, мы перепроверяем подпись.
type UserToken struct {
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // epoch-секунды
}

// UserID — личность, извлечённая из проверенного токена.
type UserID struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}
