package watchhistory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/db"
)

// Repository reads and writes watch state. Every query is keyed by the
// caller's user id, never by a client-supplied one.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// mapFK turns a foreign-key failure into the error for whichever side is
// missing: the media item, or the session's own user row.
func mapFK(err error) error {
	if !db.IsForeignKeyViolation(err) {
		return err
	}
	switch db.Constraint(err) {
	case "watch_history_user_id_fkey", "watch_later_user_id_fkey":
		return apperr.Unauthenticated("Invalid session")
	default:
		return apperr.NotFound("Media not found")
	}
}

func (r *Repository) History(ctx context.Context, userID int64) ([]*Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT wh.media_id, wh.position_seconds, wh.updated_at, m.title, m.category, m.type
		FROM watch_history wh
		JOIN media m ON m.id = wh.media_id
		WHERE wh.user_id = $1
		ORDER BY wh.updated_at DESC, wh.media_id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list watch history: %w", err)
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.MediaID, &e.PositionSeconds, &e.UpdatedAt, &e.Title, &e.Category, &e.Type); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SetPosition inserts or overwrites the position for (userID, mediaID) and
// refreshes its timestamp in one statement.
func (r *Repository) SetPosition(ctx context.Context, userID, mediaID int64, position float64) (*Entry, error) {
	e := &Entry{}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO watch_history (user_id, media_id, position_seconds, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, media_id)
		DO UPDATE SET position_seconds = EXCLUDED.position_seconds, updated_at = NOW()
		RETURNING media_id, position_seconds, updated_at`,
		userID, mediaID, position,
	).Scan(&e.MediaID, &e.PositionSeconds, &e.UpdatedAt)
	if err != nil {
		if mapped := mapFK(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("set watch position: %w", err)
	}
	return e, nil
}

func (r *Repository) Later(ctx context.Context, userID int64) ([]*LaterEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT wl.media_id, wl.created_at, m.title, m.category, m.type
		FROM watch_later wl
		JOIN media m ON m.id = wl.media_id
		WHERE wl.user_id = $1
		ORDER BY wl.created_at DESC, wl.media_id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list watch later: %w", err)
	}
	defer rows.Close()

	entries := []*LaterEntry{}
	for rows.Next() {
		e := &LaterEntry{}
		if err := rows.Scan(&e.MediaID, &e.CreatedAt, &e.Title, &e.Category, &e.Type); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddLater is idempotent: a second add for the same pair is absorbed.
func (r *Repository) AddLater(ctx context.Context, userID, mediaID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watch_later (user_id, media_id) VALUES ($1, $2)
		ON CONFLICT (user_id, media_id) DO NOTHING`, userID, mediaID)
	if err != nil {
		if mapped := mapFK(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("add watch later: %w", err)
	}
	return nil
}

// RemoveLater succeeds whether or not the pair exists.
func (r *Repository) RemoveLater(ctx context.Context, userID, mediaID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM watch_later WHERE user_id = $1 AND media_id = $2`, userID, mediaID)
	if err != nil {
		return fmt.Errorf("remove watch later: %w", err)
	}
	return nil
}
