package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session хранится в БД, а не в памяти процесса: логин переживает
// рестарт сервера и безопасно разделяется между параллельными запросами.
type Session struct {
	ID        string    `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
