package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/wpmigrate/internal/model"
	"github.com/xxxsen/wpmigrate/internal/pkg/dbutil"
	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
)

type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Create(ctx context.Context, category *model.Category) error {
	data := map[string]interface{}{
		"id":          category.ID,
		"name":        category.Name,
		"slug":        category.Slug,
		"description": dbutil.NullString(category.Description),
		"created_at":  category.CreatedAt,
	}
	return insertOne(ctx, r.db, "categories", data)
}

func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	sqlStr, args, err := builder.BuildSelect("categories", map[string]interface{}{"slug": slug},
		[]string{"id", "name", "slug", "description", "created_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var category model.Category
	err = withReadRetry(ctx, func() error {
		var desc sql.NullString
		row := r.db.QueryRowContext(ctx, sqlStr, args...)
		if err := row.Scan(&category.ID, &category.Name, &category.Slug, &desc, &category.CreatedAt); err != nil {
			if err == sql.ErrNoRows {
				return appErr.ErrNotFound
			}
			return err
		}
		category.Description = desc.String
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

type TagRepo struct {
	db *sql.DB
}

func NewTagRepo(db *sql.DB) *TagRepo {
	return &TagRepo{db: db}
}

func (r *TagRepo) Create(ctx context.Context, tag *model.Tag) error {
	data := map[string]interface{}{
		"id":         tag.ID,
		"name":       tag.Name,
		"slug":       tag.Slug,
		"created_at": tag.CreatedAt,
	}
	return insertOne(ctx, r.db, "tags", data)
}

func (r *TagRepo) GetBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	sqlStr, args, err := builder.BuildSelect("tags", map[string]interface{}{"slug": slug},
		[]string{"id", "name", "slug", "created_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var tag model.Tag
	err = withReadRetry(ctx, func() error {
		row := r.db.QueryRowContext(ctx, sqlStr, args...)
		if err := row.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.CreatedAt); err != nil {
			if err == sql.ErrNoRows {
				return appErr.ErrNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}
