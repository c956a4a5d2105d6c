package service

import (
	"context"
	"encoding/json"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/wpmigrate/internal/pkg/jsonfile"
	"github.com/xxxsen/wpmigrate/internal/wordpress"
)

type fakeExportSource struct {
	items  map[string][]json.RawMessage
	errs   map[string]error
	params map[string]url.Values
}

func (f *fakeExportSource) ListAll(_ context.Context, endpoint string, params url.Values) ([]json.RawMessage, error) {
	if f.params == nil {
		f.params = map[string]url.Values{}
	}
	f.params[endpoint] = params
	if err := f.errs[endpoint]; err != nil {
		return nil, err
	}
	return f.items[endpoint], nil
}

func (f *fakeExportSource) BaseURL() string     { return "https://old.example.com" }
func (f *fakeExportSource) Authenticated() bool { return false }

func TestExportRun(t *testing.T) {
	dir := t.TempDir()
	source := &fakeExportSource{
		items: map[string][]json.RawMessage{
			"posts": {
				json.RawMessage(`{"id":1,"slug":"a","meta":{"_elementor_data":"[{\"id\":\"x\"}]"}}`),
				json.RawMessage(`{"id":2,"slug":"b","meta":{"_elementor_data":"{broken"}}`),
				json.RawMessage(`{"id":3,"slug":"c"}`),
			},
			"categories": {json.RawMessage(`{"id":5,"slug":"news"}`)},
		},
		errs: map[string]error{
			"users": &wordpress.APIError{StatusCode: 401, Status: "Unauthorized"},
		},
	}
	svc := NewExportService(source, dir)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	svc.now = func() time.Time {
		calls++
		return start.Add(time.Duration(calls) * time.Second)
	}

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://old.example.com", summary.WordPressURL)
	assert.Equal(t, 3, summary.Counts["posts"])
	assert.Equal(t, 1, summary.Counts["categories"])
	assert.Equal(t, 0, summary.Counts["users"])
	assert.Len(t, summary.Counts, 7)
	assert.Equal(t, "publish,draft,pending", source.params["posts"].Get("status"))
	assert.Equal(t, "publish,draft", source.params["pages"].Get("status"))
	assert.Nil(t, source.params["media"])

	var users []json.RawMessage
	ok, err := jsonfile.Read(filepath.Join(dir, "users.json"), &users)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, users)
	require.NotNil(t, users)

	var posts []map[string]json.RawMessage
	ok, err = jsonfile.Read(filepath.Join(dir, "posts.json"), &posts)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, posts, 3)
	assert.JSONEq(t, `[{"id":"x"}]`, string(posts[0]["elementor_data"]))
	assert.Equal(t, "null", string(posts[1]["elementor_data"]))
	assert.Equal(t, "null", string(posts[2]["elementor_data"]))

	var saved ExportSummary
	ok, err = jsonfile.Read(filepath.Join(dir, "_summary.json"), &saved)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, summary.Counts, saved.Counts)
}

func TestExportStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source := &fakeExportSource{errs: map[string]error{"posts": context.Canceled}}
	_, err := NewExportService(source, t.TempDir()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
