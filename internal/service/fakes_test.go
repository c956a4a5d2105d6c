package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xxxsen/wpmigrate/internal/model"
	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
)

// memDB is an in-memory stand-in for the repo layer enforcing the same
// unique constraints.
type memDB struct {
	mu         sync.Mutex
	users      map[string]*model.User
	categories map[string]*model.Category
	tags       map[string]*model.Tag
	media      map[string]*model.Media
	posts      map[string]*model.Post
	postCats   map[string][]string
	postTags   map[string][]string
	pages      map[string]*model.Page
	comments   map[string]*model.Comment
}

func newMemDB() *memDB {
	return &memDB{
		users:      map[string]*model.User{},
		categories: map[string]*model.Category{},
		tags:       map[string]*model.Tag{},
		media:      map[string]*model.Media{},
		posts:      map[string]*model.Post{},
		postCats:   map[string][]string{},
		postTags:   map[string][]string{},
		pages:      map[string]*model.Page{},
		comments:   map[string]*model.Comment{},
	}
}

type memUsers struct{ db *memDB }
type memCategories struct{ db *memDB }
type memTags struct{ db *memDB }
type memMedia struct{ db *memDB }
type memPosts struct{ db *memDB }
type memPages struct{ db *memDB }
type memComments struct{ db *memDB }

func (m memUsers) Create(_ context.Context, user *model.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, u := range m.db.users {
		if u.Email == user.Email {
			return appErr.ErrConflict
		}
	}
	cp := *user
	m.db.users[user.ID] = &cp
	return nil
}

func (m memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, u := range m.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (m memUsers) GetEarliest(_ context.Context) (*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var first *model.User
	for _, u := range m.db.users {
		if first == nil || u.CreatedAt.Before(first.CreatedAt) {
			first = u
		}
	}
	if first == nil {
		return nil, appErr.ErrNotFound
	}
	cp := *first
	return &cp, nil
}

func (m memCategories) Create(_ context.Context, c *model.Category) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, existing := range m.db.categories {
		if existing.Slug == c.Slug {
			return appErr.ErrConflict
		}
	}
	cp := *c
	m.db.categories[c.ID] = &cp
	return nil
}

func (m memCategories) GetBySlug(_ context.Context, slug string) (*model.Category, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, c := range m.db.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (m memTags) Create(_ context.Context, t *model.Tag) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, existing := range m.db.tags {
		if existing.Slug == t.Slug {
			return appErr.ErrConflict
		}
	}
	cp := *t
	m.db.tags[t.ID] = &cp
	return nil
}

func (m memTags) GetBySlug(_ context.Context, slug string) (*model.Tag, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, t := range m.db.tags {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (m memMedia) Create(_ context.Context, media *model.Media) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cp := *media
	m.db.media[media.ID] = &cp
	return nil
}

func (m memMedia) GetByWordpressID(_ context.Context, wpID int64) (*model.Media, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, media := range m.db.media {
		if media.WordpressID == wpID {
			cp := *media
			return &cp, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (m memPosts) Create(_ context.Context, post *model.Post, categoryIDs, tagIDs []string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, p := range m.db.posts {
		if p.Slug == post.Slug {
			return appErr.ErrConflict
		}
	}
	cp := *post
	m.db.posts[post.ID] = &cp
	m.db.postCats[post.ID] = append([]string(nil), categoryIDs...)
	m.db.postTags[post.ID] = append([]string(nil), tagIDs...)
	return nil
}

func (m memPosts) Update(_ context.Context, post *model.Post, categoryIDs, tagIDs []string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	existing, ok := m.db.posts[post.ID]
	if !ok {
		return appErr.ErrNotFound
	}
	cp := *post
	cp.ViewCount = existing.ViewCount
	cp.CreatedAt = existing.CreatedAt
	m.db.posts[post.ID] = &cp
	m.db.postCats[post.ID] = append([]string(nil), categoryIDs...)
	m.db.postTags[post.ID] = append([]string(nil), tagIDs...)
	return nil
}

func (m memPosts) GetBySlug(_ context.Context, slug string) (*model.Post, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, p := range m.db.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (m memPosts) Stats(_ context.Context) (*model.PostStats, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	stats := &model.PostStats{}
	for _, p := range m.db.posts {
		stats.Total++
		switch p.Status {
		case model.PostStatusPublished:
			stats.Published++
		case model.PostStatusDraft:
			stats.Draft++
		case model.PostStatusScheduled:
			stats.Scheduled++
		}
	}
	return stats, nil
}

func (m memPosts) ListLatest(_ context.Context, limit int) ([]model.Post, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := make([]model.Post, 0, len(m.db.posts))
	for _, p := range m.db.posts {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memPosts) PublishAll(_ context.Context, now time.Time) (int64, int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var statuses, dates int64
	for _, p := range m.db.posts {
		p.Status = model.PostStatusPublished
		p.UpdatedAt = now
		statuses++
		if p.PublishedAt == nil {
			t := p.CreatedAt
			p.PublishedAt = &t
			dates++
		}
	}
	return statuses, dates, nil
}

func (m memPages) Create(_ context.Context, page *model.Page) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, p := range m.db.pages {
		if p.Slug == page.Slug {
			return appErr.ErrConflict
		}
	}
	if page.ParentID != "" {
		if _, ok := m.db.pages[page.ParentID]; !ok {
			return appErr.ErrInvalid
		}
	}
	cp := *page
	m.db.pages[page.ID] = &cp
	return nil
}

func (m memPages) GetBySlug(_ context.Context, slug string) (*model.Page, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, p := range m.db.pages {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (m memPages) UpdateParent(_ context.Context, id, parentID string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	page, ok := m.db.pages[id]
	if !ok {
		return appErr.ErrNotFound
	}
	if _, ok := m.db.pages[parentID]; !ok {
		return appErr.ErrInvalid
	}
	page.ParentID = parentID
	return nil
}

func (m memComments) Create(_ context.Context, c *model.Comment) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if (c.AuthorID == "") == (c.AuthorName == "") {
		return appErr.ErrInvalid
	}
	if _, ok := m.db.posts[c.PostID]; !ok {
		return appErr.ErrInvalid
	}
	for _, existing := range m.db.comments {
		if c.WordpressID > 0 && existing.WordpressID == c.WordpressID {
			return appErr.ErrConflict
		}
	}
	cp := *c
	m.db.comments[c.ID] = &cp
	return nil
}

func (m memComments) GetByWordpressID(_ context.Context, wpID int64) (*model.Comment, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, c := range m.db.comments {
		if c.WordpressID == wpID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (m memComments) UpdateParent(_ context.Context, id, parentID string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.comments[id]
	if !ok {
		return appErr.ErrNotFound
	}
	if _, ok := m.db.comments[parentID]; !ok {
		return appErr.ErrInvalid
	}
	c.ParentID = parentID
	return nil
}

func (m *memDB) postBySlug(slug string) *model.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.Slug == slug {
			return p
		}
	}
	return nil
}

func (m *memDB) pageBySlug(slug string) *model.Page {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pages {
		if p.Slug == slug {
			return p
		}
	}
	return nil
}
