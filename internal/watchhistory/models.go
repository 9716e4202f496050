package watchhistory

import (
	"time"

	"github.com/JustinTDCT/mediacat/internal/models"
)

// Entry is a saved playback position, joined with the media it refers to
// when listed.
type Entry struct {
	MediaID         int64                `json:"media_id"`
	PositionSeconds float64              `json:"position_seconds"`
	UpdatedAt       time.Time            `json:"updated_at"`
	Title           string               `json:"title,omitempty"`
	Category        models.MediaCategory `json:"category,omitempty"`
	Type            models.MediaType     `json:"type,omitempty"`
}

type LaterEntry struct {
	MediaID   int64                `json:"media_id"`
	CreatedAt time.Time            `json:"created_at"`
	Title     string               `json:"title"`
	Category  models.MediaCategory `json:"category"`
	Type      models.MediaType     `json:"type"`
}

type PositionRequest struct {
	PositionSeconds *float64 `json:"position_seconds" validate:"required,gte=0"`
}
