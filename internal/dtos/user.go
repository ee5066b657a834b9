// File: internal/dtos/user.go
package dtos

import (
	"strings"

	"github.com/iyunix/go-assistant/internal/domain"
)

// UserResponseDTO defines what fields to expose in user API responses.
type UserResponseDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterRequestDTO represents the expected payload to create a new user.
type RegisterRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Trimmed returns a copy with surrounding whitespace removed from name and email.
func (r RegisterRequestDTO) Trimmed() RegisterRequestDTO {
	return RegisterRequestDTO{
		Name:     strings.TrimSpace(r.Name),
		Email:    strings.TrimSpace(r.Email),
		Password: r.Password,
	}
}

// LoginRequestDTO represents the login payload.
type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponseDTO represents the login response.
type LoginResponseDTO struct {
	User  UserResponseDTO `json:"user"`
	Token string          `json:"token"`
}

type MessageResponseDTO struct {
	Message string `json:"message"`
}

// FromDomain maps a domain.User to UserResponseDTO for public API responses.
func FromDomain(user domain.User) UserResponseDTO {
	return UserResponseDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}
