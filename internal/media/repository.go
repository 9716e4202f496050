package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/db"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const mediaColumns = `id, title, description, category, type, parent_id, year, sort_index, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMedia(row scanner) (*Media, error) {
	m := &Media{}
	var (
		description sql.NullString
		parentID    sql.NullInt64
		year        sql.NullInt32
		sortIndex   sql.NullInt32
	)
	if err := row.Scan(&m.ID, &m.Title, &description, &m.Category, &m.Type,
		&parentID, &year, &sortIndex, &m.CreatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		m.Description = &description.String
	}
	if parentID.Valid {
		m.ParentID = &parentID.Int64
	}
	if year.Valid {
		y := int(year.Int32)
		m.Year = &y
	}
	if sortIndex.Valid {
		s := int(sortIndex.Int32)
		m.SortIndex = &s
	}
	return m, nil
}

var errParentMissing = apperr.InvalidRequest("parent media does not exist")

// List returns media matching every non-nil filter, ordered by sort_index
// (nulls last), then title, then id.
func (r *Repository) List(ctx context.Context, f Filter) ([]*Media, error) {
	var category, mediaType *string
	if f.Category != nil {
		s := string(*f.Category)
		category = &s
	}
	if f.Type != nil {
		s := string(*f.Type)
		mediaType = &s
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+mediaColumns+`
		FROM media
		WHERE ($1::text IS NULL OR category = $1::text)
		  AND ($2::text IS NULL OR type = $2::text)
		  AND ($3::bigint IS NULL OR parent_id = $3::bigint)
		ORDER BY sort_index ASC NULLS LAST, title ASC, id ASC`,
		category, mediaType, f.ParentID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	items := []*Media{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Media, error) {
	m, err := scanMedia(r.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Media not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get media %d: %w", id, err)
	}
	return m, nil
}

// Create inserts m and returns the stored row.
func (r *Repository) Create(ctx context.Context, m *Media) (*Media, error) {
	created, err := scanMedia(r.db.QueryRowContext(ctx, `
		INSERT INTO media (title, description, category, type, parent_id, year, sort_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+mediaColumns,
		m.Title, m.Description, m.Category, m.Type, m.ParentID, m.Year, m.SortIndex))
	if db.IsForeignKeyViolation(err) {
		return nil, errParentMissing
	}
	if err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return created, nil
}

// Update applies p to media id. Re-parenting is refused when the new parent
// is the item itself or one of its descendants.
func (r *Repository) Update(ctx context.Context, id int64, p MediaPatch) (*Media, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if p.ParentID.HasValue() {
		if err := checkNoCycle(ctx, tx, id, p.ParentID.Value); err != nil {
			return nil, err
		}
	}

	var category, mediaType *string
	if p.Category.HasValue() {
		s := string(p.Category.Value)
		category = &s
	}
	if p.Type.HasValue() {
		s := string(p.Type.Value)
		mediaType = &s
	}

	m, err := scanMedia(tx.QueryRowContext(ctx, `
		UPDATE media SET
			title       = CASE WHEN $2::boolean  THEN $3::text    ELSE title END,
			description = CASE WHEN $4::boolean  THEN $5::text    ELSE description END,
			category    = CASE WHEN $6::boolean  THEN $7::text    ELSE category END,
			type        = CASE WHEN $8::boolean  THEN $9::text    ELSE type END,
			parent_id   = CASE WHEN $10::boolean THEN $11::bigint ELSE parent_id END,
			year        = CASE WHEN $12::boolean THEN $13::int    ELSE year END,
			sort_index  = CASE WHEN $14::boolean THEN $15::int    ELSE sort_index END
		WHERE id = $1
		RETURNING `+mediaColumns,
		id,
		p.Title.Set, p.Title.Ptr(),
		p.Description.Set, p.Description.Ptr(),
		p.Category.Set, category,
		p.Type.Set, mediaType,
		p.ParentID.Set, p.ParentID.Ptr(),
		p.Year.Set, p.Year.Ptr(),
		p.SortIndex.Set, p.SortIndex.Ptr(),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Media not found")
	}
	if db.IsForeignKeyViolation(err) {
		return nil, errParentMissing
	}
	if db.IsCheckViolation(err) {
		return nil, apperr.InvalidRequest("parent would create a cycle")
	}
	if err != nil {
		return nil, fmt.Errorf("update media %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return m, nil
}

func checkNoCycle(ctx context.Context, tx *sql.Tx, id, parentID int64) error {
	if id == parentID {
		return apperr.InvalidRequest("parent would create a cycle")
	}
	var cyclic bool
	err := tx.QueryRowContext(ctx, `
		WITH RECURSIVE ancestors (id, parent_id, depth) AS (
			SELECT id, parent_id, 0 FROM media WHERE id = $1
			UNION ALL
			SELECT m.id, m.parent_id, a.depth + 1
			FROM media m JOIN ancestors a ON m.id = a.parent_id
			WHERE a.depth < 64
		)
		SELECT EXISTS (SELECT 1 FROM ancestors WHERE id = $2)`,
		parentID, id).Scan(&cyclic)
	if err != nil {
		return fmt.Errorf("check media ancestry: %w", err)
	}
	if cyclic {
		return apperr.InvalidRequest("parent would create a cycle")
	}
	return nil
}

// Delete removes media id together with its streams, subtitles and watch
// state. Items that still have children are refused.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return apperr.Conflict("media has child items")
	}
	if err != nil {
		return fmt.Errorf("delete media %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Media not found")
	}
	return nil
}
