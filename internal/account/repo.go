// Package account manages user profiles and the session-opening flow.
// There are no passwords: presenting an email is enough to open a session,
// and an unknown email creates a fresh account.
package account

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookify/pkg/models"
)

const DefaultName = "New User"

// Theme keys stored in app_state.
const (
	themeKey     = "theme"
	DefaultTheme = "dark"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// GetOrCreateByEmail returns the user with the given email, creating one
// with defaults when it does not exist yet.
func (r *Repo) GetOrCreateByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email required")
	}

	if u, err := r.getByEmail(ctx, email); err != nil {
		return nil, err
	} else if u != nil {
		return u, nil
	}

	u := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      DefaultName,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, name, bio, created_at)
		VALUES (?, ?, ?, '', ?)
	`, u.ID, u.Email, u.Name, u.CreatedAt.Unix())
	if err != nil {
		// Lost a race with a concurrent create for the same email.
		if existing, gerr := r.getByEmail(ctx, email); gerr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Get returns a user by id, or nil when missing.
func (r *Repo) Get(ctx context.Context, id string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, email, name, bio, created_at FROM users WHERE id = ?
	`, id)
	return scanUser(row)
}

func (r *Repo) getByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, email, name, bio, created_at FROM users WHERE email = ?
	`, email)
	return scanUser(row)
}

// UpdateProfile sets the display name and bio.
func (r *Repo) UpdateProfile(ctx context.Context, id, name, bio string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET name = ?, bio = ? WHERE id = ?
	`, name, bio, id)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateEmail changes the login email. The UNIQUE constraint surfaces as an
// error when the address is already taken.
func (r *Repo) UpdateEmail(ctx context.Context, id, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email required")
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET email = ? WHERE id = ?
	`, email, id)
	if err != nil {
		return fmt.Errorf("update email: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the account and everything keyed to it: shelves, state,
// annotations and notes, in one transaction.
func (r *Repo) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM notes WHERE user_id = ?`,
		`DELETE FROM annotations WHERE user_id = ?`,
		`DELETE FROM app_state WHERE user_id = ?`,
		`DELETE FROM shelves WHERE user_id = ?`,
		`DELETE FROM users WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete user data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete user: %w", err)
	}
	return nil
}

// Theme returns the stored UI theme, defaulting to dark.
func (r *Repo) Theme(ctx context.Context, userID string) (string, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT value FROM app_state WHERE user_id = ? AND key = ?
	`, userID, themeKey)

	var theme string
	if err := row.Scan(&theme); err != nil {
		if err == sql.ErrNoRows {
			return DefaultTheme, nil
		}
		return "", fmt.Errorf("get theme: %w", err)
	}
	return theme, nil
}

// SetTheme stores the UI theme.
func (r *Repo) SetTheme(ctx context.Context, userID, theme string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO app_state (user_id, key, value)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value
	`, userID, themeKey, theme)
	if err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var created int64
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Bio, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return &u, nil
}
