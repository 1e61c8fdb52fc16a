package service_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/security"
	"github.com/vibast-solutions/ms-go-shop/app/service"
	"github.com/vibast-solutions/ms-go-shop/app/token"
	"github.com/vibast-solutions/ms-go-shop/config"

	"github.com/DATA-DOG/go-sqlmock"
)

func newAuthService(t *testing.T, cfg *config.Config) (*service.AuthService, *token.Issuer, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, cleanup := newMockDB(t)
	issuer := token.NewIssuer(tokenConfig(cfg))
	return service.NewAuthService(newUserRepo(db), issuer, cfg), issuer, mock, cleanup
}

func TestRegister_Success(t *testing.T) {
	svc, _, mock, cleanup := newAuthService(t, testConfig())
	defer cleanup()

	mock.ExpectQuery(existsByEmailQuery).
		WithArgs(testUserEmail).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(insertUserQuery).
		WithArgs(
			sqlmock.AnyArg(),
			testUserName,
			testUserEmail,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			false,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.Register(context.Background(), testUserName, testUserEmail, testPassword)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if result.ConfirmToken == "" {
		t.Fatal("expected confirm token")
	}
	if result.User.IsEmailConfirmed {
		t.Fatal("expected unconfirmed user")
	}
	if result.User.EmailConfirmToken.String != result.ConfirmToken {
		t.Fatal("expected confirm token to be stored on the user")
	}
	if len(result.User.PasswordSalt) != security.SaltSize {
		t.Fatalf("unexpected salt size %d", len(result.User.PasswordSalt))
	}
	if !security.VerifyPassword(testPassword, result.User.PasswordHash, result.User.PasswordSalt) {
		t.Fatal("expected stored hash to verify")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegister_ConfirmationDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.RequireEmailConfirmation = false
	svc, _, mock, cleanup := newAuthService(t, cfg)
	defer cleanup()

	mock.ExpectQuery(existsByEmailQuery).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(insertUserQuery).
		WithArgs(
			sqlmock.AnyArg(),
			testUserName,
			testUserEmail,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			true,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.Register(context.Background(), testUserName, testUserEmail, testPassword)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !result.User.IsEmailConfirmed {
		t.Fatal("expected confirmed user")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, mock, cleanup := newAuthService(t, testConfig())
	defer cleanup()

	mock.ExpectQuery(existsByEmailQuery).
		WithArgs(testUserEmail).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.Register(context.Background(), testUserName, testUserEmail, testPassword)
	if !errors.Is(err, service.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmEmail_Success(t *testing.T) {
	svc, _, mock, cleanup := newAuthService(t, testConfig())
	defer cleanup()

	stored := storedUser{confirmed: false, confirmToken: "confirm-token"}
	mock.ExpectQuery(findByEmailQuery).
		WithArgs(testUserEmail).
		WillReturnRows(stored.rows())
	mock.ExpectExec(updateUserQuery).
		WithArgs(
			testUserName,
			testUserEmail,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			true,
			nil,
			nil,
			nil,
			nil,
			nil,
			sqlmock.AnyArg(),
			testUserID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.ConfirmEmail(context.Background(), testUserEmail, "confirm-token"); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmEmail_Errors(t *testing.T) {
	cases := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		token   string
		wantErr error
	}{
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(findByEmailQuery).WillReturnError(sql.ErrNoRows)
			},
			token:   "confirm-token",
			wantErr: service.ErrUserNotFound,
		},
		{
			name: "already confirmed",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(findByEmailQuery).WillReturnRows(storedUser{confirmed: true, confirmToken: "confirm-token"}.rows())
			},
			token:   "confirm-token",
			wantErr: service.ErrAlreadyConfirmed,
		},
		{
			name: "token mismatch",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(findByEmailQuery).WillReturnRows(storedUser{confirmed: false, confirmToken: "confirm-token"}.rows())
			},
			token:   "other-token",
			wantErr: service.ErrInvalidToken,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, mock, cleanup := newAuthService(t, testConfig())
			defer cleanup()

			tc.setup(mock)

			err := svc.ConfirmEmail(context.Background(), testUserEmail, tc.token)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestLogin_Success(t *testing.T) {
	cfg := testConfig()
	svc, issuer, mock, cleanup := newAuthService(t, cfg)
	defer cleanup()

	now := time.Now()
	var refreshArg driver.Value

	mock.ExpectQuery(findByEmailQuery).
		WithArgs(testUserEmail).
		WillReturnRows(hashedUser(t, testPassword).rows())
	mock.ExpectExec(updateUserQuery).
		WithArgs(
			testUserName,
			testUserEmail,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			true,
			nil,
			capture{value: &refreshArg},
			timeNear{want: now.Add(7 * 24 * time.Hour), slack: 5 * time.Second},
			nil,
			nil,
			sqlmock.AnyArg(),
			testUserID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	pair, err := svc.Login(context.Background(), testUserEmail, testPassword)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if pair.UserID != testUserID {
		t.Fatalf("unexpected user id %s", pair.UserID)
	}
	if pair.RefreshToken == "" || refreshArg != pair.RefreshToken {
		t.Fatalf("expected persisted refresh token %v to equal %q", refreshArg, pair.RefreshToken)
	}
	if diff := pair.ExpiresAt.Sub(now.Add(cfg.JWTAccessTokenTTL)); diff > 5*time.Second || diff < -5*time.Second {
		t.Fatalf("unexpected bearer expiry %v", pair.ExpiresAt)
	}

	claims, err := issuer.ValidateBearerToken(pair.AccessToken, false)
	if err != nil {
		t.Fatalf("issued token did not validate: %v", err)
	}
	if claims.UserID() != testUserID || claims.Name != testUserEmail {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ExpiresAt.Unix() != pair.ExpiresAt.Unix() {
		t.Fatalf("embedded expiry %v differs from %v", claims.ExpiresAt, pair.ExpiresAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLogin_Errors(t *testing.T) {
	unconfirmed := hashedUser(t, testPassword)
	unconfirmed.confirmed = false

	cases := []struct {
		name     string
		rows     func() *sqlmock.Rows
		password string
		wantErr  error
	}{
		{
			name:     "not found",
			rows:     func() *sqlmock.Rows { return sqlmock.NewRows(userColumns) },
			password: testPassword,
			wantErr:  service.ErrUserNotFound,
		},
		{
			name:     "wrong password",
			rows:     func() *sqlmock.Rows { return hashedUser(t, testPassword).rows() },
			password: "wrong-password",
			wantErr:  service.ErrInvalidCredentials,
		},
		{
			name:     "unconfirmed",
			rows:     unconfirmed.rows,
			password: testPassword,
			wantErr:  service.ErrEmailNotConfirmed,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, mock, cleanup := newAuthService(t, testConfig())
			defer cleanup()

			mock.ExpectQuery(findByEmailQuery).WithArgs(testUserEmail).WillReturnRows(tc.rows())

			_, err := svc.Login(context.Background(), testUserEmail, tc.password)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			// No update is expected: a failed login leaves the record alone.
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestForgotPassword_Success(t *testing.T) {
	svc, _, mock, cleanup := newAuthService(t, testConfig())
	defer cleanup()

	now := time.Now()
	var resetArg driver.Value

	mock.ExpectQuery(findByEmailQuery).
		WithArgs(testUserEmail).
		WillReturnRows(storedUser{confirmed: true}.rows())
	mock.ExpectExec(updateUserQuery).
		WithArgs(
			testUserName,
			testUserEmail,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			true,
			nil,
			nil,
			nil,
			capture{value: &resetArg},
			timeNear{want: now.Add(time.Hour), slack: 5 * time.Second},
			sqlmock.AnyArg(),
			testUserID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.ForgotPassword(context.Background(), testUserEmail)
	if err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	if result.ResetToken == "" || resetArg != result.ResetToken {
		t.Fatalf("expected persisted reset token %v to equal %q", resetArg, result.ResetToken)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestForgotPassword_NotFound(t *testing.T) {
	svc, _, mock, cleanup := newAuthService(t, testConfig())
	defer cleanup()

	mock.ExpectQuery(findByEmailQuery).WillReturnError(sql.ErrNoRows)

	if _, err := svc.ForgotPassword(context.Background(), testUserEmail); !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestResetPassword_Success(t *testing.T) {
	svc, _, mock, cleanup := newAuthService(t, testConfig())
	defer cleanup()

	stored := hashedUser(t, testPassword)
	stored.resetToken = "reset-token"
	stored.resetExpires = time.Now().Add(30 * time.Minute)

	var hashArg, saltArg driver.Value
	mock.ExpectQuery(findByEmailQuery).
		WithArgs(testUserEmail).
		WillReturnRows(stored.rows())
	mock.ExpectExec(updateUserQuery).
		WithArgs(
			testUserName,
			testUserEmail,
			capture{value: &hashArg},
			capture{value: &saltArg},
			true,
			nil,
			nil,
			nil,
			nil,
			nil,
			sqlmock.AnyArg(),
			testUserID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.ResetPassword(context.Background(), testUserEmail, "NewSecret456!", "reset-token"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	hash, _ := hashArg.([]byte)
	salt, _ := saltArg.([]byte)
	if !security.VerifyPassword("NewSecret456!", hash, salt) {
		t.Fatal("expected new password to verify")
	}
	if security.VerifyPassword(testPassword, hash, salt) {
		t.Fatal("expected old password to be rejected")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestResetPassword_Errors(t *testing.T) {
	expired := storedUser{confirmed: true, resetToken: "reset-token", resetExpires: time.Now().Add(-time.Minute)}
	valid := storedUser{confirmed: true, resetToken: "reset-token", resetExpires: time.Now().Add(time.Hour)}
	missing := storedUser{confirmed: true}

	cases := []struct {
		name    string
		rows    *sqlmock.Rows
		token   string
		wantErr error
	}{
		{name: "not found", rows: sqlmock.NewRows(userColumns), token: "reset-token", wantErr: service.ErrUserNotFound},
		{name: "token mismatch", rows: valid.rows(), token: "other-token", wantErr: service.ErrInvalidToken},
		{name: "no token issued", rows: missing.rows(), token: "reset-token", wantErr: service.ErrInvalidToken},
		{name: "expired", rows: expired.rows(), token: "reset-token", wantErr: service.ErrResetExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, mock, cleanup := newAuthService(t, testConfig())
			defer cleanup()

			mock.ExpectQuery(findByEmailQuery).WithArgs(testUserEmail).WillReturnRows(tc.rows)

			err := svc.ResetPassword(context.Background(), testUserEmail, "NewSecret456!", tc.token)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}
