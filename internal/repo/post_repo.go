package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/wpmigrate/internal/model"
	"github.com/xxxsen/wpmigrate/internal/pkg/dbutil"
	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
)

var postFields = []string{
	"id", "title", "slug", "excerpt", "content", "status", "author_id", "featured_image_id",
	"meta_title", "meta_description", "meta_keywords", "view_count", "published_at", "created_at", "updated_at",
}

type PostRepo struct {
	db *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{db: db}
}

func postScalars(post *model.Post) map[string]interface{} {
	return map[string]interface{}{
		"title":             post.Title,
		"slug":              post.Slug,
		"excerpt":           dbutil.NullString(post.Excerpt),
		"content":           post.Content,
		"status":            string(post.Status),
		"author_id":         post.AuthorID,
		"featured_image_id": dbutil.NullString(post.FeaturedImageID),
		"meta_title":        dbutil.NullString(post.MetaTitle),
		"meta_description":  dbutil.NullString(post.MetaDescription),
		"meta_keywords":     dbutil.NullString(post.MetaKeywords),
		"published_at":      dbutil.NullTime(post.PublishedAt),
		"updated_at":        post.UpdatedAt,
	}
}

// Create inserts the post and connects it to the given categories and tags
// in one transaction.
func (r *PostRepo) Create(ctx context.Context, post *model.Post, categoryIDs, tagIDs []string) error {
	data := postScalars(post)
	data["id"] = post.ID
	data["created_at"] = post.CreatedAt
	data["view_count"] = post.ViewCount
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertOne(ctx, tx, "posts", data); err != nil {
			return err
		}
		return connectTerms(ctx, tx, post.ID, categoryIDs, tagIDs)
	})
}

// Update rewrites every scalar field except the view counter and creation
// time, and replaces the category and tag sets.
func (r *PostRepo) Update(ctx context.Context, post *model.Post, categoryIDs, tagIDs []string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := updateOne(ctx, tx, "posts", map[string]interface{}{"id": post.ID}, postScalars(post)); err != nil {
			return err
		}
		for _, table := range []string{"post_categories", "post_tags"} {
			sqlStr, args, err := builder.BuildDelete(table, map[string]interface{}{"post_id": post.ID})
			if err != nil {
				return err
			}
			sqlStr, args = dbutil.Finalize(sqlStr, args)
			if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
				return err
			}
		}
		return connectTerms(ctx, tx, post.ID, categoryIDs, tagIDs)
	})
}

func connectTerms(ctx context.Context, tx *sql.Tx, postID string, categoryIDs, tagIDs []string) error {
	catRows := make([]map[string]interface{}, 0, len(categoryIDs))
	for _, id := range uniqueStrings(categoryIDs) {
		catRows = append(catRows, map[string]interface{}{"post_id": postID, "category_id": id})
	}
	if err := insertRows(ctx, tx, "post_categories", catRows); err != nil {
		return fmt.Errorf("connect categories: %w", err)
	}
	tagRows := make([]map[string]interface{}, 0, len(tagIDs))
	for _, id := range uniqueStrings(tagIDs) {
		tagRows = append(tagRows, map[string]interface{}{"post_id": postID, "tag_id": id})
	}
	if err := insertRows(ctx, tx, "post_tags", tagRows); err != nil {
		return fmt.Errorf("connect tags: %w", err)
	}
	return nil
}

func uniqueStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

func (r *PostRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *PostRepo) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	posts, err := r.list(ctx, map[string]interface{}{"slug": slug})
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, appErr.ErrNotFound
	}
	return &posts[0], nil
}

func (r *PostRepo) ListLatest(ctx context.Context, limit int) ([]model.Post, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.list(ctx, map[string]interface{}{"_orderby": "created_at desc", "_limit": []uint{0, uint(limit)}})
}

func (r *PostRepo) list(ctx context.Context, where map[string]interface{}) ([]model.Post, error) {
	sqlStr, args, err := builder.BuildSelect("posts", where, postFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var posts []model.Post
	err = withReadRetry(ctx, func() error {
		posts = posts[:0]
		rows, err := r.db.QueryContext(ctx, sqlStr, args...)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			post, err := scanPost(rows)
			if err != nil {
				return err
			}
			posts = append(posts, *post)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func scanPost(rows *sql.Rows) (*model.Post, error) {
	var (
		p                                    model.Post
		status                               string
		excerpt, featured, mTitle, mDesc, mK sql.NullString
		publishedAt                          sql.NullTime
	)
	if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &excerpt, &p.Content, &status, &p.AuthorID, &featured,
		&mTitle, &mDesc, &mK, &p.ViewCount, &publishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = model.PostStatus(status)
	p.Excerpt = excerpt.String
	p.FeaturedImageID = featured.String
	p.MetaTitle = mTitle.String
	p.MetaDescription = mDesc.String
	p.MetaKeywords = mK.String
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	return &p, nil
}

func (r *PostRepo) Stats(ctx context.Context) (*model.PostStats, error) {
	stats := &model.PostStats{}
	var err error
	if stats.Total, err = countRows(ctx, r.db, "posts", nil); err != nil {
		return nil, err
	}
	if stats.Published, err = countRows(ctx, r.db, "posts", map[string]interface{}{"status": string(model.PostStatusPublished)}); err != nil {
		return nil, err
	}
	if stats.Draft, err = countRows(ctx, r.db, "posts", map[string]interface{}{"status": string(model.PostStatusDraft)}); err != nil {
		return nil, err
	}
	if stats.Scheduled, err = countRows(ctx, r.db, "posts", map[string]interface{}{"status": string(model.PostStatusScheduled)}); err != nil {
		return nil, err
	}
	return stats, nil
}

// PublishAll marks every post published and backfills published_at from
// created_at. It returns the number of status and date updates.
func (r *PostRepo) PublishAll(ctx context.Context, now time.Time) (int64, int64, error) {
	statusRes, err := r.db.ExecContext(ctx, "UPDATE posts SET status = $1, updated_at = $2", string(model.PostStatusPublished), now)
	if err != nil {
		return 0, 0, err
	}
	statusCount, err := statusRes.RowsAffected()
	if err != nil {
		return 0, 0, err
	}
	dateRes, err := r.db.ExecContext(ctx, "UPDATE posts SET published_at = created_at WHERE published_at IS NULL")
	if err != nil {
		return statusCount, 0, err
	}
	dateCount, err := dateRes.RowsAffected()
	return statusCount, dateCount, err
}

// IncrementViews bumps the read counter atomically; counters never decrease.
func (r *PostRepo) IncrementViews(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE posts SET view_count = view_count + 1 WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
