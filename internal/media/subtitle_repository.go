package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/db"
)

type SubtitleRepository struct {
	db *sql.DB
}

func NewSubtitleRepository(db *sql.DB) *SubtitleRepository {
	return &SubtitleRepository{db: db}
}

const subtitleColumns = `id, media_id, source_url, format, label, language, is_default, created_at`

func scanSubtitle(row scanner) (*Subtitle, error) {
	s := &Subtitle{}
	var language sql.NullString
	if err := row.Scan(&s.ID, &s.MediaID, &s.SourceURL, &s.Format, &s.Label,
		&language, &s.IsDefault, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Language = nullableString(language)
	return s, nil
}

func (r *SubtitleRepository) ListByMedia(ctx context.Context, mediaID int64) ([]*Subtitle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+subtitleColumns+` FROM subtitles WHERE media_id = $1 ORDER BY id ASC`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("list subtitles: %w", err)
	}
	defer rows.Close()

	subs := []*Subtitle{}
	for rows.Next() {
		s, err := scanSubtitle(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		if err := requireMedia(ctx, r.db, mediaID); err != nil {
			return nil, err
		}
	}
	return subs, nil
}

func (r *SubtitleRepository) Create(ctx context.Context, s *Subtitle) (*Subtitle, error) {
	created, err := scanSubtitle(r.db.QueryRowContext(ctx, `
		INSERT INTO subtitles (media_id, source_url, format, label, language, is_default)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+subtitleColumns,
		s.MediaID, s.SourceURL, s.Format, s.Label, s.Language, s.IsDefault))
	if db.IsForeignKeyViolation(err) {
		return nil, apperr.NotFound("Media not found")
	}
	if err != nil {
		return nil, fmt.Errorf("create subtitle: %w", err)
	}
	return created, nil
}

func (r *SubtitleRepository) Update(ctx context.Context, id int64, p SubtitlePatch) (*Subtitle, error) {
	var format *string
	if p.Format.HasValue() {
		f := string(p.Format.Value)
		format = &f
	}
	s, err := scanSubtitle(r.db.QueryRowContext(ctx, `
		UPDATE subtitles SET
			source_url = CASE WHEN $2::boolean  THEN $3::text     ELSE source_url END,
			format     = CASE WHEN $4::boolean  THEN $5::text     ELSE format END,
			label      = CASE WHEN $6::boolean  THEN $7::text     ELSE label END,
			language   = CASE WHEN $8::boolean  THEN $9::text     ELSE language END,
			is_default = CASE WHEN $10::boolean THEN $11::boolean ELSE is_default END
		WHERE id = $1
		RETURNING `+subtitleColumns,
		id,
		p.SourceURL.Set, p.SourceURL.Ptr(),
		p.Format.Set, format,
		p.Label.Set, p.Label.Ptr(),
		p.Language.Set, p.Language.Ptr(),
		p.IsDefault.Set, p.IsDefault.Value,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Subtitle not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update subtitle %d: %w", id, err)
	}
	return s, nil
}

func (r *SubtitleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subtitles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subtitle %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Subtitle not found")
	}
	return nil
}
