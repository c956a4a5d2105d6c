package model

import (
	"strings"
	"time"
)

type MediaType string

const (
	MediaTypeImage    MediaType = "IMAGE"
	MediaTypeVideo    MediaType = "VIDEO"
	MediaTypeDocument MediaType = "DOCUMENT"
	MediaTypeOther    MediaType = "OTHER"
)

// MediaTypeFromMIME derives the media kind from a MIME type.
func MediaTypeFromMIME(mime string) MediaType {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(mime, "image/"):
		return MediaTypeImage
	case strings.HasPrefix(mime, "video/"):
		return MediaTypeVideo
	case strings.Contains(mime, "pdf"), strings.Contains(mime, "document"):
		return MediaTypeDocument
	default:
		return MediaTypeOther
	}
}

type Media struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	MimeType     string    `json:"mime_type"`
	FileSize     int64     `json:"file_size"`
	Type         MediaType `json:"type"`
	Width        *int      `json:"width,omitempty"`
	Height       *int      `json:"height,omitempty"`
	AltText      string    `json:"alt_text,omitempty"`
	Caption      string    `json:"caption,omitempty"`
	Description  string    `json:"description,omitempty"`
	WordpressID  int64     `json:"wordpress_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
