package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/wpmigrate/internal/model"
	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
	"github.com/xxxsen/wpmigrate/internal/repo"
	"github.com/xxxsen/wpmigrate/internal/testutil"
)

func TestPostgresContentRoundTrip(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	ctx := context.Background()
	now := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	users := repo.NewUserRepo(db)
	user := &model.User{ID: "u1", Email: "a@example.com", Name: "A", Role: model.UserRoleAdmin, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, users.Create(ctx, user))
	err := users.Create(ctx, &model.User{ID: "u2", Email: "a@example.com", Name: "B", Role: model.UserRoleAuthor, CreatedAt: now, UpdatedAt: now})
	assert.True(t, errors.Is(err, appErr.ErrConflict))
	earliest, err := users.GetEarliest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", earliest.ID)

	cats := repo.NewCategoryRepo(db)
	require.NoError(t, cats.Create(ctx, &model.Category{ID: "c1", Name: "News", Slug: "news", CreatedAt: now}))
	tags := repo.NewTagRepo(db)
	require.NoError(t, tags.Create(ctx, &model.Tag{ID: "t1", Name: "Go", Slug: "go", CreatedAt: now}))

	media := repo.NewMediaRepo(db)
	require.NoError(t, media.Create(ctx, &model.Media{ID: "m1", Filename: "x.png", OriginalName: "x.png",
		URL: "/media/2021/11/x.png", MimeType: "image/png", Type: model.MediaTypeImage, WordpressID: 42, CreatedAt: now}))
	m, err := media.GetByWordpressID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, m.Width)

	posts := repo.NewPostRepo(db)
	post := &model.Post{ID: "p1", Title: "Hello", Slug: "hello", Content: "<p>x</p>", Status: model.PostStatusDraft,
		AuthorID: "u1", FeaturedImageID: "m1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, posts.Create(ctx, post, []string{"c1", "c1"}, []string{"t1"}))
	require.NoError(t, posts.IncrementViews(ctx, "p1"))

	post.Title = "Hello again"
	require.NoError(t, posts.Update(ctx, post, nil, nil))
	got, err := posts.GetBySlug(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello again", got.Title)
	assert.Equal(t, int64(1), got.ViewCount)

	statuses, dates, err := posts.PublishAll(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), statuses)
	assert.Equal(t, int64(1), dates)
	stats, err := posts.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Published)

	pages := repo.NewPageRepo(db)
	require.NoError(t, pages.Create(ctx, &model.Page{ID: "pg1", Title: "Parent", Slug: "parent", Status: model.PostStatusDraft, AuthorID: "u1", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, pages.Create(ctx, &model.Page{ID: "pg2", Title: "Child", Slug: "child", Status: model.PostStatusDraft, AuthorID: "u1", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, pages.UpdateParent(ctx, "pg2", "pg1"))
	child, err := pages.GetBySlug(ctx, "child")
	require.NoError(t, err)
	assert.Equal(t, "pg1", child.ParentID)

	comments := repo.NewCommentRepo(db)
	require.NoError(t, comments.Create(ctx, &model.Comment{ID: "cm1", Content: "hi", PostID: "p1", AuthorName: "Jane", WordpressID: 30, CreatedAt: now}))
	require.NoError(t, comments.Create(ctx, &model.Comment{ID: "cm2", Content: "re", PostID: "p1", AuthorID: "u1", WordpressID: 31, CreatedAt: now}))
	require.NoError(t, comments.UpdateParent(ctx, "cm2", "cm1"))
	reply, err := comments.GetByWordpressID(ctx, 31)
	require.NoError(t, err)
	assert.Equal(t, "cm1", reply.ParentID)
}
