package dto

import (
	"time"

	"github.com/yukikurage/crm-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// ProfileDTO is the acting user's own profile
type ProfileDTO struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Photo        string    `json:"photo"`
	Bio          string    `json:"bio"`
	IsSuperuser  bool      `json:"is_superuser"`
	Capabilities []string  `json:"capabilities"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToProfileDTO converts a User model and its capability strings to ProfileDTO
func ToProfileDTO(user models.User, capabilities []string) ProfileDTO {
	if capabilities == nil {
		capabilities = []string{}
	}
	return ProfileDTO{
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		Photo:        user.Photo,
		Bio:          user.Bio,
		IsSuperuser:  user.IsSuperuser,
		Capabilities: capabilities,
		CreatedAt:    user.CreatedAt,
	}
}
