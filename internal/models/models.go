package models

import "time"

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type MediaCategory string

const (
	CategoryMovie MediaCategory = "movie"
	CategoryAnime MediaCategory = "anime"
	CategoryTV    MediaCategory = "tv"
)

func (c MediaCategory) Valid() bool {
	switch c {
	case CategoryMovie, CategoryAnime, CategoryTV:
		return true
	}
	return false
}

type MediaType string

const (
	MediaTypeMovie   MediaType = "movie"
	MediaTypeShow    MediaType = "show"
	MediaTypeSeason  MediaType = "season"
	MediaTypeEpisode MediaType = "episode"
)

func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeMovie, MediaTypeShow, MediaTypeSeason, MediaTypeEpisode:
		return true
	}
	return false
}

type StreamFormat string

const (
	StreamHLS  StreamFormat = "hls"
	StreamDASH StreamFormat = "dash"
	StreamMP4  StreamFormat = "mp4"
)

func (f StreamFormat) Valid() bool {
	switch f {
	case StreamHLS, StreamDASH, StreamMP4:
		return true
	}
	return false
}

type SubtitleFormat string

const (
	SubtitleVTT SubtitleFormat = "vtt"
	SubtitleSRT SubtitleFormat = "srt"
	SubtitleASS SubtitleFormat = "ass"
)

func (f SubtitleFormat) Valid() bool {
	switch f {
	case SubtitleVTT, SubtitleSRT, SubtitleASS:
		return true
	}
	return false
}
