package model

import "time"

type PostStatus string

const (
	PostStatusPublished PostStatus = "PUBLISHED"
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusScheduled PostStatus = "SCHEDULED"
)

// SEO holds the optional search-engine overrides shared by posts and pages.
type SEO struct {
	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	MetaKeywords    string `json:"meta_keywords,omitempty"`
}

type Post struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Excerpt         string     `json:"excerpt,omitempty"`
	Content         string     `json:"content"`
	Status          PostStatus `json:"status"`
	AuthorID        string     `json:"author_id"`
	FeaturedImageID string     `json:"featured_image_id,omitempty"`
	SEO
	ViewCount   int64      `json:"view_count"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Page struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Slug     string     `json:"slug"`
	Content  string     `json:"content"`
	Status   PostStatus `json:"status"`
	AuthorID string     `json:"author_id"`
	ParentID string     `json:"parent_id,omitempty"`
	Order    int        `json:"order"`
	SEO
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Comment is identified either by AuthorID or by the AuthorName/AuthorEmail
// pair, never both.
type Comment struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	PostID      string    `json:"post_id"`
	AuthorID    string    `json:"author_id,omitempty"`
	AuthorName  string    `json:"author_name,omitempty"`
	AuthorEmail string    `json:"author_email,omitempty"`
	IsApproved  bool      `json:"is_approved"`
	ParentID    string    `json:"parent_id,omitempty"`
	WordpressID int64     `json:"wordpress_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type PostStats struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Draft     int64 `json:"draft"`
	Scheduled int64 `json:"scheduled"`
}
