package dto

import (
	"time"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// RegisterUserRequest defines the structure for the registration endpoint.
type RegisterUserRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=4"`
}

// LoginRequest defines the structure for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token alongside the user details.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse defines the structure for API responses containing user details.
type UserResponse struct {
	UserID           int64     `json:"userID"`
	Username         string    `json:"username"`
	RegistrationDate time.Time `json:"registrationDate"`
}

// ToUserResponse converts a domain.User to UserResponse DTO.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:           user.UserID,
		Username:         user.Username,
		RegistrationDate: user.RegistrationDate,
	}
}
