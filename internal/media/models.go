package media

import (
	"time"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/models"
)

type Media struct {
	ID          int64                `json:"id"`
	Title       string               `json:"title"`
	Description *string              `json:"description"`
	Category    models.MediaCategory `json:"category"`
	Type        models.MediaType     `json:"type"`
	ParentID    *int64               `json:"parent_id"`
	Year        *int                 `json:"year"`
	SortIndex   *int                 `json:"sort_index"`
	CreatedAt   time.Time            `json:"created_at"`
}

type Stream struct {
	ID           int64               `json:"id"`
	MediaID      int64               `json:"media_id"`
	SourceURL    string              `json:"source_url"`
	Format       models.StreamFormat `json:"format"`
	QualityLabel *string             `json:"quality_label"`
	Resolution   *string             `json:"resolution"`
	Language     *string             `json:"language"`
	CreatedAt    time.Time           `json:"created_at"`
}

type Subtitle struct {
	ID        int64                 `json:"id"`
	MediaID   int64                 `json:"media_id"`
	SourceURL string                `json:"source_url"`
	Format    models.SubtitleFormat `json:"format"`
	Label     string                `json:"label"`
	Language  *string               `json:"language"`
	IsDefault bool                  `json:"is_default"`
	CreatedAt time.Time             `json:"created_at"`
}

// Filter narrows a media listing. Nil fields do not filter.
type Filter struct {
	Category *models.MediaCategory
	Type     *models.MediaType
	ParentID *int64
}

type CreateMediaRequest struct {
	Title       string               `json:"title" validate:"min=1,max=255"`
	Description *string              `json:"description" validate:"omitempty,max=2000"`
	Category    models.MediaCategory `json:"category" validate:"required,enum"`
	Type        models.MediaType     `json:"type" validate:"required,enum"`
	ParentID    *int64               `json:"parent_id" validate:"omitempty,gt=0"`
	Year        *int                 `json:"year" validate:"omitempty,gte=1900,lte=3000"`
	SortIndex   *int                 `json:"sort_index" validate:"omitempty,gte=-2147483648,lte=2147483647"`
}

func (req CreateMediaRequest) toMedia() *Media {
	return &Media{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Type:        req.Type,
		ParentID:    req.ParentID,
		Year:        req.Year,
		SortIndex:   req.SortIndex,
	}
}

// MediaPatch lists every column a media update may write.
type MediaPatch struct {
	Title       models.Optional[string]               `json:"title" validate:"omitnil,min=1,max=255"`
	Description models.Optional[string]               `json:"description" validate:"omitnil,max=2000"`
	Category    models.Optional[models.MediaCategory] `json:"category" validate:"omitnil,enum"`
	Type        models.Optional[models.MediaType]     `json:"type" validate:"omitnil,enum"`
	ParentID    models.Optional[int64]                `json:"parent_id" validate:"omitnil,gt=0"`
	Year        models.Optional[int]                  `json:"year" validate:"omitnil,gte=1900,lte=3000"`
	SortIndex   models.Optional[int]                  `json:"sort_index" validate:"omitnil,gte=-2147483648,lte=2147483647"`
}

func (p MediaPatch) check() error {
	if p.Title.Null || p.Category.Null || p.Type.Null {
		return apperr.InvalidRequest("title, category and type cannot be null")
	}
	if !p.Title.Set && !p.Description.Set && !p.Category.Set && !p.Type.Set &&
		!p.ParentID.Set && !p.Year.Set && !p.SortIndex.Set {
		return apperr.InvalidRequest("No updates provided")
	}
	return nil
}

type CreateStreamRequest struct {
	SourceURL    string              `json:"source_url" validate:"required,http_url"`
	Format       models.StreamFormat `json:"format" validate:"required,enum"`
	QualityLabel *string             `json:"quality_label" validate:"omitempty,max=50"`
	Resolution   *string             `json:"resolution" validate:"omitempty,max=50"`
	Language     *string             `json:"language" validate:"omitempty,max=20"`
}

type StreamPatch struct {
	SourceURL    models.Optional[string]              `json:"source_url" validate:"omitnil,http_url"`
	Format       models.Optional[models.StreamFormat] `json:"format" validate:"omitnil,enum"`
	QualityLabel models.Optional[string]              `json:"quality_label" validate:"omitnil,max=50"`
	Resolution   models.Optional[string]              `json:"resolution" validate:"omitnil,max=50"`
	Language     models.Optional[string]              `json:"language" validate:"omitnil,max=20"`
}

func (p StreamPatch) check() error {
	if p.SourceURL.Null || p.Format.Null {
		return apperr.InvalidRequest("source_url and format cannot be null")
	}
	if !p.SourceURL.Set && !p.Format.Set && !p.QualityLabel.Set && !p.Resolution.Set && !p.Language.Set {
		return apperr.InvalidRequest("No updates provided")
	}
	return nil
}

type CreateSubtitleRequest struct {
	SourceURL string                `json:"source_url" validate:"required,http_url"`
	Format    models.SubtitleFormat `json:"format" validate:"required,enum"`
	Label     string                `json:"label" validate:"min=1,max=100"`
	Language  *string               `json:"language" validate:"omitempty,max=20"`
	IsDefault bool                  `json:"is_default"`
}

type SubtitlePatch struct {
	SourceURL models.Optional[string]                `json:"source_url" validate:"omitnil,http_url"`
	Format    models.Optional[models.SubtitleFormat] `json:"format" validate:"omitnil,enum"`
	Label     models.Optional[string]                `json:"label" validate:"omitnil,min=1,max=100"`
	Language  models.Optional[string]                `json:"language" validate:"omitnil,max=20"`
	IsDefault models.Optional[bool]                  `json:"is_default"`
}

func (p SubtitlePatch) check() error {
	if p.SourceURL.Null || p.Format.Null || p.Label.Null || p.IsDefault.Null {
		return apperr.InvalidRequest("source_url, format, label and is_default cannot be null")
	}
	if !p.SourceURL.Set && !p.Format.Set && !p.Label.Set && !p.Language.Set && !p.IsDefault.Set {
		return apperr.InvalidRequest("No updates provided")
	}
	return nil
}
