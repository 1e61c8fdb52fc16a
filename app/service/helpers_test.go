package service_test

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/repository"
	"github.com/vibast-solutions/ms-go-shop/app/security"
	"github.com/vibast-solutions/ms-go-shop/app/token"
	"github.com/vibast-solutions/ms-go-shop/config"

	"github.com/DATA-DOG/go-sqlmock"
)

var userColumns = []string{
	"id",
	"name",
	"email",
	"password_hash",
	"password_salt",
	"is_email_confirmed",
	"email_confirm_token",
	"refresh_token",
	"refresh_token_expires_at",
	"reset_password_token",
	"reset_password_token_expires_at",
	"created_at",
	"updated_at",
}

const (
	findByEmailQuery          = `(?s)SELECT id, name, email, password_hash, password_salt, .+FROM users WHERE email = \?$`
	findByEmailForUpdateQuery = `(?s)SELECT id, name, email, password_hash, password_salt, .+FROM users WHERE email = \? FOR UPDATE`
	findByIDQuery             = `(?s)SELECT id, name, email, password_hash, password_salt, .+FROM users WHERE id = \?`
	listUsersQuery            = `(?s)SELECT id, name, email, .+FROM users ORDER BY created_at`
	existsByEmailQuery        = `(?s)SELECT EXISTS\(SELECT 1 FROM users WHERE email = \?\)`
	insertUserQuery           = `(?s)INSERT INTO users \(id, name, email, password_hash, password_salt, is_email_confirmed, email_confirm_token, created_at, updated_at\)\s+VALUES \(\?, \?, \?, \?, \?, \?, \?, \?, \?\)`
	updateUserQuery           = `(?s)UPDATE users SET\s+name = \?,\s+email = \?,\s+password_hash = \?,\s+password_salt = \?,\s+is_email_confirmed = \?,\s+email_confirm_token = \?,\s+refresh_token = \?,\s+refresh_token_expires_at = \?,\s+reset_password_token = \?,\s+reset_password_token_expires_at = \?,\s+updated_at = \?\s+WHERE id = \?`
	deleteUserQuery           = `(?s)DELETE FROM users WHERE id = \?`

	testUserID    = "5b0c8d1e-2f4a-4c3b-9d7e-6a1f2b3c4d5e"
	testUserName  = "Jane Doe"
	testUserEmail = "user@example.com"
	testPassword  = "Secret123!"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                "test-secret-with-enough-entropy",
		JWTIssuer:                "shop-users",
		JWTAudience:              "shop",
		JWTAccessTokenTTL:        time.Hour,
		RefreshTokenTTL:          7 * 24 * time.Hour,
		ResetTokenTTL:            time.Hour,
		RequireEmailConfirmation: true,
		CascadeFailurePolicy:     config.CascadeAbort,
	}
}

func tokenConfig(cfg *config.Config) token.Config {
	return token.Config{
		SigningKey: []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		TTL:        cfg.JWTAccessTokenTTL,
	}
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return db, mock, func() { _ = db.Close() }
}

func newUserRepo(db *sql.DB) *repository.UserRepository {
	return repository.NewUserRepository(db)
}

// storedUser describes a users row. Nil fields are returned as SQL NULL.
type storedUser struct {
	confirmed      bool
	confirmToken   any
	refreshToken   any
	refreshExpires any
	resetToken     any
	resetExpires   any
	hash           []byte
	salt           []byte
}

func hashedUser(t *testing.T, password string) storedUser {
	t.Helper()

	hash, salt, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	return storedUser{confirmed: true, hash: hash, salt: salt}
}

func (u storedUser) row() []driver.Value {
	now := time.Now()
	hash, salt := u.hash, u.salt
	if hash == nil {
		hash, salt = []byte("hash"), []byte("salt")
	}
	return []driver.Value{
		testUserID,
		testUserName,
		testUserEmail,
		hash,
		salt,
		u.confirmed,
		u.confirmToken,
		u.refreshToken,
		u.refreshExpires,
		u.resetToken,
		u.resetExpires,
		now,
		now,
	}
}

func (u storedUser) rows() *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).AddRow(u.row()...)
}

// timeNear matches a time argument within slack of want.
type timeNear struct {
	want  time.Time
	slack time.Duration
}

func (m timeNear) Match(v driver.Value) bool {
	got, ok := v.(time.Time)
	if !ok {
		return false
	}
	diff := got.Sub(m.want)
	return diff <= m.slack && diff >= -m.slack
}

// capture records the argument it is matched against.
type capture struct {
	value *driver.Value
}

func (c capture) Match(v driver.Value) bool {
	*c.value = v
	return true
}
