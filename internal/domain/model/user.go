package model

import (
	"time"

	"github.com/scrollinondubs/DogTinder/internal/domain/enums"
)

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         enums.Role `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
}
