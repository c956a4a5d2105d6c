package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/wpmigrate/internal/model"
	"github.com/xxxsen/wpmigrate/internal/pkg/dbutil"
	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
)

type PageRepo struct {
	db *sql.DB
}

func NewPageRepo(db *sql.DB) *PageRepo {
	return &PageRepo{db: db}
}

func (r *PageRepo) Create(ctx context.Context, page *model.Page) error {
	data := map[string]interface{}{
		"id":               page.ID,
		"title":            page.Title,
		"slug":             page.Slug,
		"content":          page.Content,
		"status":           string(page.Status),
		"author_id":        page.AuthorID,
		"parent_id":        dbutil.NullString(page.ParentID),
		"sort_order":       page.Order,
		"meta_title":       dbutil.NullString(page.MetaTitle),
		"meta_description": dbutil.NullString(page.MetaDescription),
		"meta_keywords":    dbutil.NullString(page.MetaKeywords),
		"published_at":     dbutil.NullTime(page.PublishedAt),
		"created_at":       page.CreatedAt,
		"updated_at":       page.UpdatedAt,
	}
	return insertOne(ctx, r.db, "pages", data)
}

func (r *PageRepo) GetBySlug(ctx context.Context, slug string) (*model.Page, error) {
	sqlStr, args, err := builder.BuildSelect("pages", map[string]interface{}{"slug": slug},
		[]string{"id", "title", "slug", "status", "author_id", "parent_id", "sort_order", "created_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var page model.Page
	err = withReadRetry(ctx, func() error {
		var (
			status   string
			parentID sql.NullString
		)
		row := r.db.QueryRowContext(ctx, sqlStr, args...)
		if err := row.Scan(&page.ID, &page.Title, &page.Slug, &status, &page.AuthorID, &parentID, &page.Order, &page.CreatedAt); err != nil {
			if err == sql.ErrNoRows {
				return appErr.ErrNotFound
			}
			return err
		}
		page.Status = model.PostStatus(status)
		page.ParentID = parentID.String
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *PageRepo) UpdateParent(ctx context.Context, id, parentID string) error {
	return updateOne(ctx, r.db, "pages", map[string]interface{}{"id": id}, map[string]interface{}{
		"parent_id": dbutil.NullString(parentID),
	})
}
