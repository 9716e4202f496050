package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/db"
	"github.com/JustinTDCT/mediacat/internal/models"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, username, password_hash, role, is_active, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts u and fills its id and created_at. A taken username is a
// Conflict; the unique index decides, so concurrent creates cannot both win.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		u.Username, u.PasswordHash, u.Role, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("Username already exists")
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// List returns every account, newest first.
func (r *Repository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update applies p in one statement and returns the updated row.
func (r *Repository) Update(ctx context.Context, id int64, p Patch) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users SET
			is_active     = CASE WHEN $2::boolean THEN $3::boolean ELSE is_active END,
			role          = CASE WHEN $4::boolean THEN $5::text ELSE role END,
			password_hash = CASE WHEN $6::boolean THEN $7::text ELSE password_hash END
		WHERE id = $1
		RETURNING `+userColumns,
		id,
		p.IsActive.Set, p.IsActive.Value,
		p.Role.Set, string(p.Role.Value),
		p.PasswordHash.Set, p.PasswordHash.Value,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return u, nil
}

// SetPassword replaces the hash for username.
func (r *Repository) SetPassword(ctx context.Context, username, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2 WHERE username = $1`, username, hash)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}
