package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/db"
)

type StreamRepository struct {
	db *sql.DB
}

func NewStreamRepository(db *sql.DB) *StreamRepository {
	return &StreamRepository{db: db}
}

const streamColumns = `id, media_id, source_url, format, quality_label, resolution, language, created_at`

func scanStream(row scanner) (*Stream, error) {
	s := &Stream{}
	var quality, resolution, language sql.NullString
	if err := row.Scan(&s.ID, &s.MediaID, &s.SourceURL, &s.Format,
		&quality, &resolution, &language, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.QualityLabel = nullableString(quality)
	s.Resolution = nullableString(resolution)
	s.Language = nullableString(language)
	return s, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// ListByMedia returns the streams of mediaID by id. A missing media item is NotFound.
func (r *StreamRepository) ListByMedia(ctx context.Context, mediaID int64) ([]*Stream, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+streamColumns+` FROM streams WHERE media_id = $1 ORDER BY id ASC`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}
	defer rows.Close()

	streams := []*Stream{}
	for rows.Next() {
		s, err := scanStream(rows)
		if err != nil {
			return nil, err
		}
		streams = append(streams, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(streams) == 0 {
		if err := requireMedia(ctx, r.db, mediaID); err != nil {
			return nil, err
		}
	}
	return streams, nil
}

func (r *StreamRepository) Create(ctx context.Context, s *Stream) (*Stream, error) {
	created, err := scanStream(r.db.QueryRowContext(ctx, `
		INSERT INTO streams (media_id, source_url, format, quality_label, resolution, language)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+streamColumns,
		s.MediaID, s.SourceURL, s.Format, s.QualityLabel, s.Resolution, s.Language))
	if db.IsForeignKeyViolation(err) {
		return nil, apperr.NotFound("Media not found")
	}
	if err != nil {
		return nil, fmt.Errorf("create stream: %w", err)
	}
	return created, nil
}

func (r *StreamRepository) Update(ctx context.Context, id int64, p StreamPatch) (*Stream, error) {
	var format *string
	if p.Format.HasValue() {
		f := string(p.Format.Value)
		format = &f
	}
	s, err := scanStream(r.db.QueryRowContext(ctx, `
		UPDATE streams SET
			source_url    = CASE WHEN $2::boolean  THEN $3::text  ELSE source_url END,
			format        = CASE WHEN $4::boolean  THEN $5::text  ELSE format END,
			quality_label = CASE WHEN $6::boolean  THEN $7::text  ELSE quality_label END,
			resolution    = CASE WHEN $8::boolean  THEN $9::text  ELSE resolution END,
			language      = CASE WHEN $10::boolean THEN $11::text ELSE language END
		WHERE id = $1
		RETURNING `+streamColumns,
		id,
		p.SourceURL.Set, p.SourceURL.Ptr(),
		p.Format.Set, format,
		p.QualityLabel.Set, p.QualityLabel.Ptr(),
		p.Resolution.Set, p.Resolution.Ptr(),
		p.Language.Set, p.Language.Ptr(),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Stream not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update stream %d: %w", id, err)
	}
	return s, nil
}

func (r *StreamRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM streams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stream %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Stream not found")
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func requireMedia(ctx context.Context, q queryer, id int64) error {
	var ok bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM media WHERE id = $1)`, id).Scan(&ok); err != nil {
		return fmt.Errorf("media exists %d: %w", id, err)
	}
	if !ok {
		return apperr.NotFound("Media not found")
	}
	return nil
}
