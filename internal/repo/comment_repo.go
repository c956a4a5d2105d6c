package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/wpmigrate/internal/model"
	"github.com/xxxsen/wpmigrate/internal/pkg/dbutil"
	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
)

type CommentRepo struct {
	db *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

func (r *CommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	var wpID interface{}
	if comment.WordpressID > 0 {
		wpID = comment.WordpressID
	}
	data := map[string]interface{}{
		"id":           comment.ID,
		"content":      comment.Content,
		"post_id":      comment.PostID,
		"author_id":    dbutil.NullString(comment.AuthorID),
		"author_name":  dbutil.NullString(comment.AuthorName),
		"author_email": dbutil.NullString(comment.AuthorEmail),
		"is_approved":  comment.IsApproved,
		"parent_id":    dbutil.NullString(comment.ParentID),
		"wordpress_id": wpID,
		"created_at":   comment.CreatedAt,
	}
	return insertOne(ctx, r.db, "comments", data)
}

func (r *CommentRepo) GetByWordpressID(ctx context.Context, wpID int64) (*model.Comment, error) {
	sqlStr, args, err := builder.BuildSelect("comments", map[string]interface{}{"wordpress_id": wpID},
		[]string{"id", "post_id", "parent_id", "created_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var comment model.Comment
	err = withReadRetry(ctx, func() error {
		var parentID sql.NullString
		row := r.db.QueryRowContext(ctx, sqlStr, args...)
		if err := row.Scan(&comment.ID, &comment.PostID, &parentID, &comment.CreatedAt); err != nil {
			if err == sql.ErrNoRows {
				return appErr.ErrNotFound
			}
			return err
		}
		comment.ParentID = parentID.String
		comment.WordpressID = wpID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepo) UpdateParent(ctx context.Context, id, parentID string) error {
	return updateOne(ctx, r.db, "comments", map[string]interface{}{"id": id}, map[string]interface{}{
		"parent_id": dbutil.NullString(parentID),
	})
}
