package service

import (
	"context"
	"time"

	"github.com/xxxsen/wpmigrate/internal/model"
)

// The store interfaces below are satisfied by the repo package.

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetEarliest(ctx context.Context) (*model.User, error)
}

type CategoryStore interface {
	Create(ctx context.Context, category *model.Category) error
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
}

type TagStore interface {
	Create(ctx context.Context, tag *model.Tag) error
	GetBySlug(ctx context.Context, slug string) (*model.Tag, error)
}

type MediaStore interface {
	Create(ctx context.Context, media *model.Media) error
	GetByWordpressID(ctx context.Context, wpID int64) (*model.Media, error)
}

type PostStore interface {
	Create(ctx context.Context, post *model.Post, categoryIDs, tagIDs []string) error
	Update(ctx context.Context, post *model.Post, categoryIDs, tagIDs []string) error
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)
}

type PageStore interface {
	Create(ctx context.Context, page *model.Page) error
	GetBySlug(ctx context.Context, slug string) (*model.Page, error)
	UpdateParent(ctx context.Context, id, parentID string) error
}

type CommentStore interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByWordpressID(ctx context.Context, wpID int64) (*model.Comment, error)
	UpdateParent(ctx context.Context, id, parentID string) error
}

type PostAdminStore interface {
	Stats(ctx context.Context) (*model.PostStats, error)
	ListLatest(ctx context.Context, limit int) ([]model.Post, error)
	PublishAll(ctx context.Context, now time.Time) (int64, int64, error)
}
