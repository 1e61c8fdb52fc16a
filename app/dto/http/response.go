package http

import (
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/entity"
)

type RegisterResponse struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type TokenResponse struct {
	JWTToken     string    `json:"jwtToken"`
	Expiration   time.Time `json:"expiration"`
	RefreshToken string    `json:"refreshToken"`
	UserID       string    `json:"userId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ResetPasswordFormResponse struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
	ResetToken  string `json:"resetToken"`
}

type UserResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	IsEmailConfirmed bool      `json:"isEmailConfirmed"`
	CreatedAt        time.Time `json:"createdAt"`
}

func NewUserResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		IsEmailConfirmed: user.IsEmailConfirmed,
		CreatedAt:        user.CreatedAt,
	}
}

func NewUserListResponse(users []*entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user))
	}
	return out
}

type DeleteUserProductsResponse struct {
	Removed int64 `json:"removed"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
