package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/strawhatacademy/academy-api/internal/models"
)

// UserRepository provides database access for identities and profiles.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `u.user_id, u.username, u.password_hash, u.role, p.first_name, p.last_name, p.registration_date`

// FindByUsername returns a user with its profile by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `SELECT ` + userColumns + `
        FROM users u
        JOIN profiles p ON p.user_id = u.user_id
        WHERE u.username = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// FindByID returns a user with its profile by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `SELECT ` + userColumns + `
        FROM users u
        JOIN profiles p ON p.user_id = u.user_id
        WHERE u.user_id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Register inserts the identity row and its profile row in one transaction.
// The identity insert is rolled back when the profile insert fails, so a
// failed registration never leaves an orphaned users row behind. On success
// the generated id is written back to user.ID.
func (r *UserRepository) Register(ctx context.Context, user *models.User, passwordHash string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registration: %w", err)
	}

	const insertUser = `INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING user_id`
	var id int64
	if err := tx.GetContext(ctx, &id, insertUser, user.Username, passwordHash, user.Role); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert user: %w", err)
	}

	if user.RegistrationDate.IsZero() {
		user.RegistrationDate = time.Now().UTC()
	}
	const insertProfile = `INSERT INTO profiles (user_id, first_name, last_name, registration_date) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, insertProfile, id, user.FirstName, user.LastName, user.RegistrationDate); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit registration: %w", err)
	}

	user.ID = id
	user.PasswordHash = passwordHash
	return nil
}
