package dto

import (
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/entity"
)

type RegisterResult struct {
	User         *entity.User
	ConfirmToken string
}

// TokenPair is returned by login and refresh. RefreshToken is unchanged by a
// refresh.
type TokenPair struct {
	AccessToken  string
	ExpiresAt    time.Time
	RefreshToken string
	UserID       string
}

type ForgotPasswordResult struct {
	User       *entity.User
	ResetToken string
}
