package wordpress

import (
	"encoding/json"
	"strings"
)

// Rendered is the {"rendered": "..."} wrapper WordPress uses for HTML fields.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// SEOHead is the subset of yoast_head_json carried into meta fields.
type SEOHead struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

type Term struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Taxonomy string `json:"taxonomy"`
}

type EmbeddedMedia struct {
	ID        int64  `json:"id"`
	SourceURL string `json:"source_url"`
	MimeType  string `json:"mime_type"`
	AltText   string `json:"alt_text"`
}

type PostEmbedded struct {
	FeaturedMedia []EmbeddedMedia `json:"wp:featuredmedia"`
	Terms         [][]Term        `json:"wp:term"`
}

type Post struct {
	ID            int64           `json:"id"`
	Date          string          `json:"date"`
	Slug          string          `json:"slug"`
	Status        string          `json:"status"`
	Link          string          `json:"link"`
	Title         Rendered        `json:"title"`
	Content       Rendered        `json:"content"`
	Excerpt       Rendered        `json:"excerpt"`
	Author        int64           `json:"author"`
	FeaturedMedia int64           `json:"featured_media"`
	Categories    []int64         `json:"categories"`
	Tags          []int64         `json:"tags"`
	SEO           *SEOHead        `json:"yoast_head_json,omitempty"`
	Meta          json.RawMessage `json:"meta,omitempty"`
	Embedded      *PostEmbedded   `json:"_embedded,omitempty"`
}

// EmbeddedFeatured returns the first embedded featured media that carries a
// source URL.
func (p *Post) EmbeddedFeatured() *EmbeddedMedia {
	if p.Embedded == nil {
		return nil
	}
	for i := range p.Embedded.FeaturedMedia {
		if strings.TrimSpace(p.Embedded.FeaturedMedia[i].SourceURL) != "" {
			return &p.Embedded.FeaturedMedia[i]
		}
	}
	return nil
}

// EmbeddedTerms returns the embedded term group at index, 0 being categories
// and 1 tags.
func (p *Post) EmbeddedTerms(index int) []Term {
	if p.Embedded == nil || index >= len(p.Embedded.Terms) {
		return nil
	}
	return p.Embedded.Terms[index]
}

type Page struct {
	ID        int64    `json:"id"`
	Date      string   `json:"date"`
	Slug      string   `json:"slug"`
	Status    string   `json:"status"`
	Link      string   `json:"link"`
	Title     Rendered `json:"title"`
	Content   Rendered `json:"content"`
	Author    int64    `json:"author"`
	Parent    int64    `json:"parent"`
	MenuOrder int      `json:"menu_order"`
	SEO       *SEOHead `json:"yoast_head_json,omitempty"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Link string `json:"link"`
}

type MediaDetails struct {
	Width    int   `json:"width"`
	Height   int   `json:"height"`
	FileSize int64 `json:"filesize"`
}

type Media struct {
	ID           int64         `json:"id"`
	Date         string        `json:"date"`
	Slug         string        `json:"slug"`
	Title        Rendered      `json:"title"`
	SourceURL    string        `json:"source_url"`
	AltText      string        `json:"alt_text"`
	Caption      Rendered      `json:"caption"`
	Description  Rendered      `json:"description"`
	MimeType     string        `json:"mime_type"`
	MediaDetails *MediaDetails `json:"media_details,omitempty"`
}

type User struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Email       string            `json:"email"`
	Description string            `json:"description"`
	AvatarURLs  map[string]string `json:"avatar_urls,omitempty"`
}

type Comment struct {
	ID          int64    `json:"id"`
	Post        int64    `json:"post"`
	Parent      int64    `json:"parent"`
	Author      int64    `json:"author"`
	AuthorName  string   `json:"author_name"`
	AuthorEmail string   `json:"author_email"`
	Date        string   `json:"date"`
	Content     Rendered `json:"content"`
	Status      string   `json:"status"`
}
