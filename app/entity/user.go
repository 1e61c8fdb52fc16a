package entity

import (
	"database/sql"
	"time"
)

type User struct {
	ID                          string
	Name                        string
	Email                       string
	PasswordHash                []byte
	PasswordSalt                []byte
	IsEmailConfirmed            bool
	EmailConfirmToken           sql.NullString
	RefreshToken                sql.NullString
	RefreshTokenExpiresAt       sql.NullTime
	ResetPasswordToken          sql.NullString
	ResetPasswordTokenExpiresAt sql.NullTime
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

// SetPassword replaces the hash and salt together.
func (u *User) SetPassword(hash, salt []byte) {
	u.PasswordHash = hash
	u.PasswordSalt = salt
}

func (u *User) SetRefreshToken(token string, expiresAt time.Time) {
	u.RefreshToken = sql.NullString{String: token, Valid: true}
	u.RefreshTokenExpiresAt = sql.NullTime{Time: expiresAt, Valid: true}
}

func (u *User) ClearRefreshToken() {
	u.RefreshToken = sql.NullString{}
	u.RefreshTokenExpiresAt = sql.NullTime{}
}

func (u *User) SetResetPasswordToken(token string, expiresAt time.Time) {
	u.ResetPasswordToken = sql.NullString{String: token, Valid: true}
	u.ResetPasswordTokenExpiresAt = sql.NullTime{Time: expiresAt, Valid: true}
}

func (u *User) ClearResetPasswordToken() {
	u.ResetPasswordToken = sql.NullString{}
	u.ResetPasswordTokenExpiresAt = sql.NullTime{}
}
