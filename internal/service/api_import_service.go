package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/wpmigrate/internal/model"
	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
	"github.com/xxxsen/wpmigrate/internal/sanitize"
	"github.com/xxxsen/wpmigrate/internal/wordpress"
)

// PostSource is the live WordPress API as seen by the incremental importer.
type PostSource interface {
	Categories(ctx context.Context) ([]wordpress.Category, error)
	Tags(ctx context.Context) ([]wordpress.Tag, error)
	Posts(ctx context.Context, status string) ([]wordpress.Post, error)
	Media(ctx context.Context, id int64) (*wordpress.Media, error)
}

type APIImportResult struct {
	Total    int           `json:"total"`
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// APIImportService pulls posts straight from the API and creates them, or
// with reimport enabled updates the ones already present by slug.
type APIImportService struct {
	source   PostSource
	posts    PostStore
	media    MediaStore
	taxonomy *TaxonomyService
	authors  *AuthorService
	reimport bool
	now      func() time.Time
}

func NewAPIImportService(source PostSource, posts PostStore, media MediaStore, taxonomy *TaxonomyService,
	authors *AuthorService, reimport bool) *APIImportService {
	return &APIImportService{
		source:   source,
		posts:    posts,
		media:    media,
		taxonomy: taxonomy,
		authors:  authors,
		reimport: reimport,
		now:      time.Now,
	}
}

type termIndex struct {
	bySlug map[string]string
	slugOf map[int64]string
}

func newTermIndex() *termIndex {
	return &termIndex{bySlug: map[string]string{}, slugOf: map[int64]string{}}
}

// resolve maps embedded terms by slug, falling back to the numeric ids when
// the response carried no embedded terms.
func (t *termIndex) resolve(embedded []wordpress.Term, ids []int64) []string {
	out := make([]string, 0, len(embedded)+len(ids))
	seen := map[string]bool{}
	add := func(slug string) {
		id, ok := t.bySlug[normalizeSlug(slug)]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(embedded) > 0 {
		for _, term := range embedded {
			add(term.Slug)
		}
		return out
	}
	for _, wpID := range ids {
		add(t.slugOf[wpID])
	}
	return out
}

func (s *APIImportService) Run(ctx context.Context) (*APIImportResult, error) {
	start := s.now()
	logger := logutil.GetLogger(ctx)
	result := &APIImportResult{}

	author, err := s.authors.DefaultAuthor(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve author: %w", err)
	}
	categories, tags := s.loadTerms(ctx)

	posts, err := s.source.Posts(ctx, "any")
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}
	logger.Info("fetched posts", zap.Int("count", len(posts)), zap.Bool("reimport", s.reimport))
	if len(posts) == 0 {
		logger.Info("no posts returned, check the site url and application password")
		return result, nil
	}

	for i := range posts {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		wp := &posts[i]
		result.Total++
		outcome, err := s.importPost(ctx, wp, author.ID, categories, tags)
		if err != nil {
			result.Failed++
			logger.Error("post import failed", zap.Int64("wp_id", wp.ID), zap.String("slug", wp.Slug), zap.Error(err))
			continue
		}
		switch outcome {
		case outcomeCreated:
			result.Created++
		case outcomeUpdated:
			result.Updated++
		case outcomeSkipped:
			result.Skipped++
		}
	}
	result.Duration = s.now().Sub(start)
	logger.Info("api import complete",
		zap.Int("created", result.Created), zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped), zap.Int("failed", result.Failed), zap.Duration("duration", result.Duration))
	return result, nil
}

// loadTerms upserts every remote category and tag. A fetch failure only
// costs the associations, so it is logged and the import goes on.
func (s *APIImportService) loadTerms(ctx context.Context) (*termIndex, *termIndex) {
	logger := logutil.GetLogger(ctx)
	categories, tags := newTermIndex(), newTermIndex()

	remoteCats, err := s.source.Categories(ctx)
	if err != nil {
		logger.Warn("could not fetch categories", zap.Error(err))
	}
	for _, c := range remoteCats {
		categories.slugOf[c.ID] = normalizeSlug(c.Slug)
		id, _, err := s.taxonomy.EnsureCategory(ctx, c.Name, c.Slug, sanitize.StripTags(c.Description))
		if err != nil {
			if !errors.Is(err, appErr.ErrSkipped) {
				logger.Warn("category upsert failed", zap.String("slug", c.Slug), zap.Error(err))
			}
			continue
		}
		categories.bySlug[normalizeSlug(c.Slug)] = id
	}

	remoteTags, err := s.source.Tags(ctx)
	if err != nil {
		logger.Warn("could not fetch tags", zap.Error(err))
	}
	for _, t := range remoteTags {
		tags.slugOf[t.ID] = normalizeSlug(t.Slug)
		id, _, err := s.taxonomy.EnsureTag(ctx, t.Name, t.Slug)
		if err != nil {
			logger.Warn("tag upsert failed", zap.String("slug", t.Slug), zap.Error(err))
			continue
		}
		tags.bySlug[normalizeSlug(t.Slug)] = id
	}
	logger.Info("fetched terms", zap.Int("categories", len(remoteCats)), zap.Int("tags", len(remoteTags)))
	return categories, tags
}

type importOutcome int

const (
	outcomeCreated importOutcome = iota + 1
	outcomeUpdated
	outcomeSkipped
)

func (s *APIImportService) importPost(ctx context.Context, wp *wordpress.Post, authorID string, categories, tags *termIndex) (importOutcome, error) {
	logger := logutil.GetLogger(ctx)
	existing, err := s.posts.GetBySlug(ctx, wp.Slug)
	if err != nil && !errors.Is(err, appErr.ErrNotFound) {
		return 0, err
	}
	if err != nil {
		existing = nil
	}
	if existing != nil && !s.reimport {
		return outcomeSkipped, nil
	}

	title := sanitize.StripTags(wp.Title.Rendered)
	if title == "" {
		title = "Untitled"
	}
	status := MapStatus(wp.Status)
	date, dateErr := ParseSourceDate(wp.Date)
	if dateErr != nil {
		if status == model.PostStatusPublished {
			return 0, dateErr
		}
		date = s.now()
	}
	post := &model.Post{
		Title:       title,
		Slug:        wp.Slug,
		Excerpt:     sanitize.StripTags(wp.Excerpt.Rendered),
		Content:     wp.Content.Rendered,
		Status:      status,
		AuthorID:    authorID,
		SEO:         seoFrom(wp.SEO),
		PublishedAt: publishedAt(status, date),
		UpdatedAt:   s.now(),
	}

	featured := s.resolveFeatured(ctx, wp)
	if featured != nil {
		mediaID, err := s.createFeaturedMedia(ctx, wp, featured, title)
		if err != nil {
			return 0, fmt.Errorf("create featured media: %w", err)
		}
		post.FeaturedImageID = mediaID
	}

	categoryIDs := categories.resolve(wp.EmbeddedTerms(0), wp.Categories)
	tagIDs := tags.resolve(wp.EmbeddedTerms(1), wp.Tags)

	if existing != nil {
		post.ID = existing.ID
		post.CreatedAt = existing.CreatedAt
		if err := s.posts.Update(ctx, post, categoryIDs, tagIDs); err != nil {
			return 0, err
		}
		logger.Info("post updated", zap.String("slug", wp.Slug), zap.String("featured", post.FeaturedImageID))
		return outcomeUpdated, nil
	}
	post.ID = newID()
	post.CreatedAt = date
	if err := s.posts.Create(ctx, post, categoryIDs, tagIDs); err != nil {
		return 0, err
	}
	logger.Info("post created", zap.String("slug", wp.Slug), zap.String("featured", post.FeaturedImageID))
	return outcomeCreated, nil
}

// resolveFeatured prefers the embedded attachment and otherwise makes exactly
// one request for the featured media id. Any failure there means no image.
func (s *APIImportService) resolveFeatured(ctx context.Context, wp *wordpress.Post) *wordpress.EmbeddedMedia {
	if embedded := wp.EmbeddedFeatured(); embedded != nil {
		return embedded
	}
	if wp.FeaturedMedia <= 0 {
		return nil
	}
	media, err := s.source.Media(ctx, wp.FeaturedMedia)
	if err != nil {
		logutil.GetLogger(ctx).Debug("featured media lookup failed",
			zap.Int64("wp_id", wp.ID), zap.Int64("wp_media", wp.FeaturedMedia), zap.Error(err))
		return nil
	}
	if media == nil || media.SourceURL == "" {
		return nil
	}
	return &wordpress.EmbeddedMedia{
		ID:        media.ID,
		SourceURL: media.SourceURL,
		MimeType:  media.MimeType,
		AltText:   media.AltText,
	}
}

// createFeaturedMedia always inserts a new record; media found on this path
// is not matched against existing rows.
func (s *APIImportService) createFeaturedMedia(ctx context.Context, wp *wordpress.Post, featured *wordpress.EmbeddedMedia, title string) (string, error) {
	filename := FileNameFromURL(featured.SourceURL)
	if filename == "" {
		filename = fmt.Sprintf("wp-%d.jpg", wp.ID)
	}
	mime := featured.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	alt := featured.AltText
	if alt == "" {
		alt = title
	}
	wpID := wp.FeaturedMedia
	if wpID <= 0 {
		wpID = featured.ID
	}
	media := &model.Media{
		ID:           newID(),
		Filename:     filename,
		OriginalName: filename,
		URL:          featured.SourceURL,
		MimeType:     mime,
		Type:         model.MediaTypeFromMIME(mime),
		AltText:      alt,
		WordpressID:  wpID,
		CreatedAt:    s.now(),
	}
	if err := s.media.Create(ctx, media); err != nil {
		return "", err
	}
	return media.ID, nil
}
