package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/wpmigrate/internal/model"
	"github.com/xxxsen/wpmigrate/internal/pkg/dbutil"
	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
)

var mediaFields = []string{
	"id", "filename", "original_name", "url", "thumbnail_url", "mime_type", "file_size", "type",
	"width", "height", "alt_text", "caption", "description", "wordpress_id", "created_at",
}

type MediaRepo struct {
	db *sql.DB
}

func NewMediaRepo(db *sql.DB) *MediaRepo {
	return &MediaRepo{db: db}
}

func (r *MediaRepo) Create(ctx context.Context, media *model.Media) error {
	var wpID interface{}
	if media.WordpressID > 0 {
		wpID = media.WordpressID
	}
	data := map[string]interface{}{
		"id":            media.ID,
		"filename":      media.Filename,
		"original_name": media.OriginalName,
		"url":           media.URL,
		"thumbnail_url": dbutil.NullString(media.ThumbnailURL),
		"mime_type":     media.MimeType,
		"file_size":     media.FileSize,
		"type":          string(media.Type),
		"width":         dbutil.NullInt(media.Width),
		"height":        dbutil.NullInt(media.Height),
		"alt_text":      dbutil.NullString(media.AltText),
		"caption":       dbutil.NullString(media.Caption),
		"description":   dbutil.NullString(media.Description),
		"wordpress_id":  wpID,
		"created_at":    media.CreatedAt,
	}
	return insertOne(ctx, r.db, "media", data)
}

// GetByWordpressID returns the oldest record imported from the given source
// attachment.
func (r *MediaRepo) GetByWordpressID(ctx context.Context, wpID int64) (*model.Media, error) {
	where := map[string]interface{}{
		"wordpress_id": wpID,
		"_orderby":     "created_at asc",
		"_limit":       []uint{0, 1},
	}
	sqlStr, args, err := builder.BuildSelect("media", where, mediaFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	var media *model.Media
	err = withReadRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, sqlStr, args...)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return appErr.ErrNotFound
		}
		media, err = scanMedia(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return media, nil
}

func scanMedia(rows *sql.Rows) (*model.Media, error) {
	var (
		m                          model.Media
		mediaType                  string
		thumb, alt, caption, desc  sql.NullString
		width, height, wordpressID sql.NullInt64
	)
	if err := rows.Scan(&m.ID, &m.Filename, &m.OriginalName, &m.URL, &thumb, &m.MimeType, &m.FileSize, &mediaType,
		&width, &height, &alt, &caption, &desc, &wordpressID, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Type = model.MediaType(mediaType)
	m.ThumbnailURL = thumb.String
	m.AltText = alt.String
	m.Caption = caption.String
	m.Description = desc.String
	m.WordpressID = wordpressID.Int64
	if width.Valid {
		w := int(width.Int64)
		m.Width = &w
	}
	if height.Valid {
		h := int(height.Int64)
		m.Height = &h
	}
	return &m, nil
}
