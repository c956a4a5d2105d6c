package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/wpmigrate/internal/model"
	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
	"github.com/xxxsen/wpmigrate/internal/sanitize"
)

// UncategorizedSlug is the WordPress default bucket, never imported.
const UncategorizedSlug = "uncategorized"

const slugCacheTTL = 30 * time.Minute

// TaxonomyService upserts categories and tags by slug. Both import paths go
// through it so a slug maps to exactly one record.
type TaxonomyService struct {
	categories CategoryStore
	tags       TagStore
	catCache   *expirable.LRU[string, string]
	tagCache   *expirable.LRU[string, string]
	now        func() time.Time
}

func NewTaxonomyService(categories CategoryStore, tags TagStore, cacheSize int) *TaxonomyService {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	return &TaxonomyService{
		categories: categories,
		tags:       tags,
		catCache:   expirable.NewLRU[string, string](cacheSize, nil, slugCacheTTL),
		tagCache:   expirable.NewLRU[string, string](cacheSize, nil, slugCacheTTL),
		now:        time.Now,
	}
}

// EnsureCategory returns the id of the category with slug, creating it when
// missing. The bool reports whether a record was created.
func (s *TaxonomyService) EnsureCategory(ctx context.Context, name, slug, description string) (string, bool, error) {
	slug = normalizeSlug(slug)
	if slug == "" {
		return "", false, fmt.Errorf("category slug is empty: %w", appErr.ErrInvalid)
	}
	if slug == UncategorizedSlug {
		return "", false, appErr.ErrSkipped
	}
	if id, ok := s.catCache.Get(slug); ok {
		return id, false, nil
	}
	lookup := func() (string, error) {
		cat, err := s.categories.GetBySlug(ctx, slug)
		if err != nil {
			return "", err
		}
		return cat.ID, nil
	}
	create := func() (string, error) {
		cat := &model.Category{
			ID:          newID(),
			Name:        termName(name, slug),
			Slug:        slug,
			Description: strings.TrimSpace(description),
			CreatedAt:   s.now(),
		}
		return cat.ID, s.categories.Create(ctx, cat)
	}
	id, created, err := ensureBySlug(lookup, create)
	if err != nil {
		return "", false, err
	}
	s.catCache.Add(slug, id)
	if created {
		logutil.GetLogger(ctx).Debug("category created", zap.String("slug", slug), zap.String("id", id))
	}
	return id, created, nil
}

func (s *TaxonomyService) EnsureTag(ctx context.Context, name, slug string) (string, bool, error) {
	slug = normalizeSlug(slug)
	if slug == "" {
		return "", false, fmt.Errorf("tag slug is empty: %w", appErr.ErrInvalid)
	}
	if id, ok := s.tagCache.Get(slug); ok {
		return id, false, nil
	}
	lookup := func() (string, error) {
		tag, err := s.tags.GetBySlug(ctx, slug)
		if err != nil {
			return "", err
		}
		return tag.ID, nil
	}
	create := func() (string, error) {
		tag := &model.Tag{
			ID:        newID(),
			Name:      termName(name, slug),
			Slug:      slug,
			CreatedAt: s.now(),
		}
		return tag.ID, s.tags.Create(ctx, tag)
	}
	id, created, err := ensureBySlug(lookup, create)
	if err != nil {
		return "", false, err
	}
	s.tagCache.Add(slug, id)
	if created {
		logutil.GetLogger(ctx).Debug("tag created", zap.String("slug", slug), zap.String("id", id))
	}
	return id, created, nil
}

// ensureBySlug finds, else creates. A conflict on create means another
// writer got there first, so the record is read back.
func ensureBySlug(lookup, create func() (string, error)) (string, bool, error) {
	id, err := lookup()
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, appErr.ErrNotFound) {
		return "", false, err
	}
	id, err = create()
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, appErr.ErrConflict) {
		return "", false, err
	}
	id, err = lookup()
	if err != nil {
		return "", false, err
	}
	return id, false, nil
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func termName(name, slug string) string {
	if n := sanitize.StripTags(name); n != "" {
		return n
	}
	return slug
}
