package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/dto"
	"github.com/vibast-solutions/ms-go-shop/app/repository"
	"github.com/vibast-solutions/ms-go-shop/app/token"

	"github.com/pkg/errors"
)

// TokenService renews and revokes refresh sessions. Both operations lock the
// user row for the length of one transaction, so a refresh racing a revoke
// for the same account sees either the old pair or none.
type TokenService struct {
	db     *sql.DB
	issuer *token.Issuer
	now    func() time.Time
}

func NewTokenService(db *sql.DB, issuer *token.Issuer) *TokenService {
	return &TokenService{
		db:     db,
		issuer: issuer,
		now:    time.Now,
	}
}

// Refresh issues a new bearer token for the principal of accessToken, which
// may already be expired. The refresh token is returned unchanged.
func (s *TokenService) Refresh(ctx context.Context, accessToken, refreshToken string) (*dto.TokenPair, error) {
	claims, err := s.issuer.ValidateBearerToken(accessToken, true)
	if err != nil || claims.Name == "" {
		return nil, ErrInvalidToken
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	user, err := repository.NewUserRepository(tx).FindByEmailForUpdate(ctx, claims.Name)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !user.RefreshToken.Valid || user.RefreshToken.String != refreshToken {
		return nil, ErrInvalidRefreshToken
	}
	if !user.RefreshTokenExpiresAt.Valid || !s.now().Before(user.RefreshTokenExpiresAt.Time) {
		return nil, ErrInvalidRefreshToken
	}

	bearer, err := s.issuer.GenerateBearerToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit transaction")
	}

	return &dto.TokenPair{
		AccessToken:  bearer.Token,
		ExpiresAt:    bearer.ExpiresAt,
		RefreshToken: user.RefreshToken.String,
		UserID:       user.ID,
	}, nil
}

// Revoke clears the refresh pair of the user with the given email. An empty
// email fails before the store is touched.
func (s *TokenService) Revoke(ctx context.Context, email string) error {
	if email == "" {
		return ErrUnauthorized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	txUserRepo := repository.NewUserRepository(tx)
	user, err := txUserRepo.FindByEmailForUpdate(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	user.ClearRefreshToken()
	if err := txUserRepo.Update(ctx, user); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "commit transaction")
}
