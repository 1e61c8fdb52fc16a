package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/entity"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

const mysqlErrDuplicateEntry = 1062

// ErrDuplicateEmail is returned by Create when the unique email index rejects
// the row.
var ErrDuplicateEmail = errors.New("email already exists")

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectUserColumns = `
		SELECT id, name, email, password_hash, password_salt, is_email_confirmed, email_confirm_token,
		       refresh_token, refresh_token_expires_at, reset_password_token, reset_password_token_expires_at,
		       created_at, updated_at
		FROM users`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	user := &entity.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.PasswordSalt,
		&user.IsEmailConfirmed,
		&user.EmailConfirmToken,
		&user.RefreshToken,
		&user.RefreshTokenExpiresAt,
		&user.ResetPasswordToken,
		&user.ResetPasswordTokenExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, password_salt, is_email_confirmed, email_confirm_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.PasswordSalt,
		user.IsEmailConfirmed,
		user.EmailConfirmToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isDuplicateEntry(err) {
		return ErrDuplicateEmail
	}
	return errors.Wrap(err, "insert user")
}

// FindByEmail returns nil, nil when no user has the given email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, selectUserColumns+` WHERE email = ?`, email)
}

// FindByEmailForUpdate locks the matching row until the surrounding
// transaction ends. It must be called on a repository bound to a *sql.Tx.
func (r *UserRepository) FindByEmailForUpdate(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, selectUserColumns+` WHERE email = ? FOR UPDATE`, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, selectUserColumns+` WHERE id = ?`, id)
}

func (r *UserRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUserColumns+` ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()

	users := make([]*entity.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list users")
	}

	return users, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "check email")
	}
	return exists, nil
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET
			name = ?,
			email = ?,
			password_hash = ?,
			password_salt = ?,
			is_email_confirmed = ?,
			email_confirm_token = ?,
			refresh_token = ?,
			refresh_token_expires_at = ?,
			reset_password_token = ?,
			reset_password_token_expires_at = ?,
			updated_at = ?
		WHERE id = ?
	`
	user.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.PasswordSalt,
		user.IsEmailConfirmed,
		user.EmailConfirmToken,
		user.RefreshToken,
		user.RefreshTokenExpiresAt,
		user.ResetPasswordToken,
		user.ResetPasswordTokenExpiresAt,
		user.UpdatedAt,
		user.ID,
	)
	return errors.Wrap(err, "update user")
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return errors.Wrap(err, "delete user")
}
