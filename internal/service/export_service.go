package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/wpmigrate/internal/pkg/jsonfile"
	"github.com/xxxsen/wpmigrate/internal/wordpress"
)

// ExportSource lists raw items from the WordPress API.
type ExportSource interface {
	ListAll(ctx context.Context, endpoint string, params url.Values) ([]json.RawMessage, error)
	BaseURL() string
	Authenticated() bool
}

type exportTarget struct {
	name     string
	endpoint string
	status   string
}

var exportTargets = []exportTarget{
	{name: "posts", endpoint: "posts", status: "publish,draft,pending"},
	{name: "pages", endpoint: "pages", status: "publish,draft"},
	{name: "categories", endpoint: "categories"},
	{name: "tags", endpoint: "tags"},
	{name: "media", endpoint: "media"},
	{name: "users", endpoint: "users"},
	{name: "comments", endpoint: "comments"},
}

// ExportSummary is written to _summary.json.
type ExportSummary struct {
	ExportedAt      time.Time      `json:"exported_at"`
	WordPressURL    string         `json:"wordpress_url"`
	Counts          map[string]int `json:"counts"`
	DurationSeconds int64          `json:"duration_seconds"`
}

type ExportService struct {
	source ExportSource
	dir    string
	now    func() time.Time
}

func NewExportService(source ExportSource, dir string) *ExportService {
	return &ExportService{source: source, dir: dir, now: time.Now}
}

// Run exports every entity kind. A failed endpoint is written as an empty
// list and does not stop the others.
func (s *ExportService) Run(ctx context.Context) (*ExportSummary, error) {
	start := s.now()
	logger := logutil.GetLogger(ctx)
	logger.Info("exporting wordpress content",
		zap.String("url", s.source.BaseURL()), zap.Bool("authenticated", s.source.Authenticated()))

	summary := &ExportSummary{WordPressURL: s.source.BaseURL(), Counts: map[string]int{}}
	for i, target := range exportTargets {
		logger.Info(fmt.Sprintf("[%d/%d] exporting %s", i+1, len(exportTargets), target.name))
		items, err := s.fetch(ctx, target)
		if err != nil {
			return nil, err
		}
		if target.name == "posts" {
			items = attachElementorData(ctx, items)
		}
		if err := jsonfile.Write(filepath.Join(s.dir, target.name+".json"), items); err != nil {
			return nil, err
		}
		summary.Counts[target.name] = len(items)
		logger.Info("saved export", zap.String("kind", target.name), zap.Int("count", len(items)))
	}
	summary.ExportedAt = s.now().UTC()
	summary.DurationSeconds = int64(s.now().Sub(start).Round(time.Second) / time.Second)
	if err := jsonfile.Write(filepath.Join(s.dir, "_summary.json"), summary); err != nil {
		return nil, err
	}
	logger.Info("export complete", zap.Any("counts", summary.Counts), zap.Int64("duration_seconds", summary.DurationSeconds))
	return summary, nil
}

// fetch only returns an error when the run itself was cancelled.
func (s *ExportService) fetch(ctx context.Context, target exportTarget) ([]json.RawMessage, error) {
	var params url.Values
	if target.status != "" {
		params = url.Values{"status": []string{target.status}}
	}
	items, err := s.source.ListAll(ctx, target.endpoint, params)
	if err == nil {
		if items == nil {
			items = []json.RawMessage{}
		}
		return items, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	logger := logutil.GetLogger(ctx).With(zap.String("endpoint", target.endpoint))
	var apiErr *wordpress.APIError
	if errors.As(err, &apiErr) {
		logger.Error("export request failed", zap.Int("status", apiErr.StatusCode), zap.String("status_text", apiErr.Status))
	} else {
		logger.Error("export request failed", zap.Error(err))
	}
	if wordpress.IsUnauthorized(err) {
		logger.Error("authentication failed, check the wordpress username and application password")
	}
	return []json.RawMessage{}, nil
}

// attachElementorData adds "elementor_data" to each post: the decoded value
// of meta._elementor_data, or null.
func attachElementorData(ctx context.Context, items []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(items))
	for _, raw := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			out = append(out, raw)
			continue
		}
		obj["elementor_data"] = extractElementorData(ctx, obj)
		encoded, err := json.Marshal(obj)
		if err != nil {
			out = append(out, raw)
			continue
		}
		out = append(out, encoded)
	}
	return out
}

var jsonNull = json.RawMessage("null")

func extractElementorData(ctx context.Context, obj map[string]json.RawMessage) json.RawMessage {
	var meta map[string]json.RawMessage
	if err := json.Unmarshal(obj["meta"], &meta); err != nil {
		return jsonNull
	}
	var encoded string
	if err := json.Unmarshal(meta["_elementor_data"], &encoded); err != nil || encoded == "" {
		return jsonNull
	}
	if !json.Valid([]byte(encoded)) {
		logutil.GetLogger(ctx).Warn("failed to parse elementor data", zap.ByteString("post_id", obj["id"]))
		return jsonNull
	}
	return json.RawMessage(encoded)
}
