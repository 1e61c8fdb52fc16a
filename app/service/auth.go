package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/dto"
	"github.com/vibast-solutions/ms-go-shop/app/entity"
	"github.com/vibast-solutions/ms-go-shop/app/repository"
	"github.com/vibast-solutions/ms-go-shop/app/security"
	"github.com/vibast-solutions/ms-go-shop/app/token"
	"github.com/vibast-solutions/ms-go-shop/config"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo *repository.UserRepository
	issuer   *token.Issuer
	cfg      *config.Config
	now      func() time.Time
}

func NewAuthService(userRepo *repository.UserRepository, issuer *token.Issuer, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		issuer:   issuer,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*dto.RegisterResult, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, salt, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	confirmToken := s.issuer.GenerateOpaqueToken()
	now := s.now()

	user := &entity.User{
		ID:                uuid.New().String(),
		Name:              name,
		Email:             email,
		IsEmailConfirmed:  !s.cfg.RequireEmailConfirmation,
		EmailConfirmToken: sql.NullString{String: confirmToken, Valid: true},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	user.SetPassword(hash, salt)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return &dto.RegisterResult{
		User:         user,
		ConfirmToken: confirmToken,
	}, nil
}

// ConfirmEmail flips the confirmed flag and clears the confirm token so it
// cannot be replayed.
func (s *AuthService) ConfirmEmail(ctx context.Context, email, confirmToken string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if user.IsEmailConfirmed {
		return ErrAlreadyConfirmed
	}

	if !user.EmailConfirmToken.Valid || user.EmailConfirmToken.String != confirmToken {
		return ErrInvalidToken
	}

	user.IsEmailConfirmed = true
	user.EmailConfirmToken = sql.NullString{Valid: false}

	return s.userRepo.Update(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !security.VerifyPassword(password, user.PasswordHash, user.PasswordSalt) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsEmailConfirmed {
		return nil, ErrEmailNotConfirmed
	}

	bearer, err := s.issuer.GenerateBearerToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken := s.issuer.GenerateOpaqueToken()
	user.SetRefreshToken(refreshToken, s.now().Add(s.cfg.RefreshTokenTTL))

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return &dto.TokenPair{
		AccessToken:  bearer.Token,
		ExpiresAt:    bearer.ExpiresAt,
		RefreshToken: refreshToken,
		UserID:       user.ID,
	}, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*dto.ForgotPasswordResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	resetToken := s.issuer.GenerateOpaqueToken()
	user.SetResetPasswordToken(resetToken, s.now().Add(s.cfg.ResetTokenTTL))

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return &dto.ForgotPasswordResult{
		User:       user,
		ResetToken: resetToken,
	}, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword, resetToken string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !user.ResetPasswordToken.Valid || user.ResetPasswordToken.String != resetToken {
		return ErrInvalidToken
	}

	if !user.ResetPasswordTokenExpiresAt.Valid || !s.now().Before(user.ResetPasswordTokenExpiresAt.Time) {
		return ErrResetExpired
	}

	hash, salt, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.SetPassword(hash, salt)
	user.ClearResetPasswordToken()

	return s.userRepo.Update(ctx, user)
}
