// Package analytics reports catalog totals, both on demand for the admin
// stats endpoint and on a schedule as Prometheus gauges.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
)

type Counts struct {
	Users       int64 `json:"users"`
	ActiveUsers int64 `json:"active_users"`
	Media       int64 `json:"media"`
	Streams     int64 `json:"streams"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Counts reads every total in one statement so the figures share a snapshot.
func (r *Repository) Counts(ctx context.Context) (*Counts, error) {
	c := &Counts{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_active),
			(SELECT COUNT(*) FROM media),
			(SELECT COUNT(*) FROM streams)`,
	).Scan(&c.Users, &c.ActiveUsers, &c.Media, &c.Streams)
	if err != nil {
		return nil, fmt.Errorf("count catalog: %w", err)
	}
	return c, nil
}
