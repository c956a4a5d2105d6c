package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/wpmigrate/internal/model"
	"github.com/xxxsen/wpmigrate/internal/wordpress"
)

type mockPostSource struct {
	mock.Mock
}

func (m *mockPostSource) Categories(ctx context.Context) ([]wordpress.Category, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]wordpress.Category)
	return items, args.Error(1)
}

func (m *mockPostSource) Tags(ctx context.Context) ([]wordpress.Tag, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]wordpress.Tag)
	return items, args.Error(1)
}

func (m *mockPostSource) Posts(ctx context.Context, status string) ([]wordpress.Post, error) {
	args := m.Called(ctx, status)
	items, _ := args.Get(0).([]wordpress.Post)
	return items, args.Error(1)
}

func (m *mockPostSource) Media(ctx context.Context, id int64) (*wordpress.Media, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*wordpress.Media)
	return item, args.Error(1)
}

func newTestAPIImporter(db *memDB, source PostSource, reimport bool) *APIImportService {
	taxonomy := NewTaxonomyService(memCategories{db}, memTags{db}, 64)
	authors := NewAuthorService(memUsers{db}, "blog@example.com", "Blog Author")
	return NewAPIImportService(source, memPosts{db}, memMedia{db}, taxonomy, authors, reimport)
}

func remotePosts() []wordpress.Post {
	return []wordpress.Post{
		{
			ID: 1, Date: "2021-06-01T00:00:00", Slug: "embedded", Status: "publish",
			Title:         wordpress.Rendered{Rendered: "Embedded"},
			Content:       wordpress.Rendered{Rendered: "<div class=\"elementor\"><p>kept</p></div>"},
			Excerpt:       wordpress.Rendered{Rendered: "<p>Short</p>"},
			FeaturedMedia: 42,
			Embedded: &wordpress.PostEmbedded{
				FeaturedMedia: []wordpress.EmbeddedMedia{{ID: 42, SourceURL: "https://old.example.com/a.png", MimeType: "image/png"}},
				Terms: [][]wordpress.Term{
					{{ID: 5, Slug: "news"}, {ID: 1, Slug: "uncategorized"}},
					{{ID: 7, Slug: "go"}},
				},
			},
		},
		{
			ID: 2, Date: "2021-06-02T00:00:00", Slug: "fallback", Status: "draft",
			Title: wordpress.Rendered{Rendered: ""}, FeaturedMedia: 43, Categories: []int64{5},
		},
	}
}

func termsOn(source *mockPostSource) {
	source.On("Categories", mock.Anything).Return([]wordpress.Category{
		{ID: 5, Name: "News", Slug: "news"},
		{ID: 1, Name: "Uncategorized", Slug: "uncategorized"},
	}, nil)
	source.On("Tags", mock.Anything).Return([]wordpress.Tag{{ID: 7, Name: "Go", Slug: "go"}}, nil)
}

func TestAPIImportCreatesPosts(t *testing.T) {
	db := newMemDB()
	source := &mockPostSource{}
	termsOn(source)
	source.On("Posts", mock.Anything, "any").Return(remotePosts(), nil)
	source.On("Media", mock.Anything, int64(43)).Return(&wordpress.Media{ID: 43, SourceURL: "https://old.example.com/b"}, nil).Once()

	result, err := newTestAPIImporter(db, source, false).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Created)
	source.AssertNumberOfCalls(t, "Media", 1)

	require.Len(t, db.users, 1)
	var author *model.User
	for _, u := range db.users {
		author = u
	}
	assert.Equal(t, "blog@example.com", author.Email)

	embedded := db.postBySlug("embedded")
	require.NotNil(t, embedded)
	assert.Equal(t, "<div class=\"elementor\"><p>kept</p></div>", embedded.Content)
	assert.Equal(t, "Short", embedded.Excerpt)
	assert.Equal(t, model.PostStatusPublished, embedded.Status)
	assert.Equal(t, author.ID, embedded.AuthorID)
	require.NotEmpty(t, embedded.FeaturedImageID)
	media := db.media[embedded.FeaturedImageID]
	assert.Equal(t, "https://old.example.com/a.png", media.URL)
	assert.Equal(t, "image/png", media.MimeType)
	assert.Equal(t, "Embedded", media.AltText)
	assert.Len(t, db.postCats[embedded.ID], 1)
	assert.Len(t, db.postTags[embedded.ID], 1)

	fallback := db.postBySlug("fallback")
	require.NotNil(t, fallback)
	assert.Equal(t, "Untitled", fallback.Title)
	assert.Nil(t, fallback.PublishedAt)
	fbMedia := db.media[fallback.FeaturedImageID]
	require.NotNil(t, fbMedia)
	assert.Equal(t, "image/jpeg", fbMedia.MimeType)
	assert.Equal(t, "b", fbMedia.Filename)
	assert.Equal(t, db.postCats[embedded.ID], db.postCats[fallback.ID])
}

func TestAPIImportSecondRunSkips(t *testing.T) {
	db := newMemDB()
	source := &mockPostSource{}
	termsOn(source)
	source.On("Posts", mock.Anything, "any").Return(remotePosts(), nil)
	source.On("Media", mock.Anything, int64(43)).Return(nil, errors.New("boom"))

	svc := newTestAPIImporter(db, source, false)
	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	mediaBefore := len(db.media)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Zero(t, result.Updated)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, mediaBefore, len(db.media))
	assert.Len(t, db.posts, 2)
	// a failed lookup leaves the post without an image
	assert.Empty(t, db.postBySlug("fallback").FeaturedImageID)
}

func TestAPIImportReimportReplacesAssociations(t *testing.T) {
	db := newMemDB()
	source := &mockPostSource{}
	termsOn(source)
	posts := remotePosts()[:1]
	source.On("Posts", mock.Anything, "any").Return(posts, nil).Once()
	_, err := newTestAPIImporter(db, source, false).Run(context.Background())
	require.NoError(t, err)
	before := db.postBySlug("embedded")
	require.NotNil(t, before)
	before.ViewCount = 9

	changed := remotePosts()[:1]
	changed[0].Title = wordpress.Rendered{Rendered: "Changed"}
	changed[0].Embedded.Terms = [][]wordpress.Term{{}, {}}
	changed[0].Categories = nil
	source.On("Posts", mock.Anything, "any").Return(changed, nil).Once()

	result, err := newTestAPIImporter(db, source, true).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	after := db.postBySlug("embedded")
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, "Changed", after.Title)
	assert.Equal(t, int64(9), after.ViewCount)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Empty(t, db.postCats[after.ID])
	assert.Empty(t, db.postTags[after.ID])
}

func TestAPIImportTermFetchFailureIsNotFatal(t *testing.T) {
	db := newMemDB()
	source := &mockPostSource{}
	source.On("Categories", mock.Anything).Return(nil, errors.New("unauthorized"))
	source.On("Tags", mock.Anything).Return(nil, errors.New("unauthorized"))
	source.On("Posts", mock.Anything, "any").Return([]wordpress.Post{
		{ID: 3, Date: "2021-06-01T00:00:00", Slug: "plain", Status: "publish", Categories: []int64{5}},
	}, nil)

	result, err := newTestAPIImporter(db, source, false).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, db.postCats[db.postBySlug("plain").ID])
	source.AssertNotCalled(t, "Media", mock.Anything, mock.Anything)
}

func TestAPIImportNoPosts(t *testing.T) {
	db := newMemDB()
	source := &mockPostSource{}
	termsOn(source)
	source.On("Posts", mock.Anything, "any").Return([]wordpress.Post{}, nil)
	result, err := newTestAPIImporter(db, source, false).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Total)
}

func TestTermIndexResolve(t *testing.T) {
	idx := newTermIndex()
	idx.bySlug["news"] = "c1"
	idx.slugOf[5] = "news"
	assert.Equal(t, []string{"c1"}, idx.resolve([]wordpress.Term{{Slug: "News"}, {Slug: "news"}, {Slug: "gone"}}, nil))
	assert.Equal(t, []string{"c1"}, idx.resolve(nil, []int64{5, 6}))
	assert.Empty(t, idx.resolve(nil, nil))
}
