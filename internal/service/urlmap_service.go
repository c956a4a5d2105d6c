package service

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/wpmigrate/internal/pkg/jsonfile"
	"github.com/xxxsen/wpmigrate/internal/wordpress"
)

// URLMapping is one redirect from a WordPress path to its new route.
type URLMapping struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Type  string `json:"type"`
	ID    int64  `json:"id"`
	Title string `json:"title,omitempty"`
	Name  string `json:"name,omitempty"`
}

var pageRoutes = map[string]string{
	"home":       "/",
	"about-us":   "/about",
	"our-team":   "/team",
	"contact-us": "/contact",
	"programs":   "/programs",
	"volunteer":  "/volunteer",
	"donate":     "/donate",
	"gallery":    "/gallery",
}

// oldPath returns the path of link without surrounding slashes, or "" when
// the link is unusable.
func oldPath(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.Trim(u.Path, "/")
}

// BuildURLMappings derives redirects from already exported data. It does no
// I/O and yields the same output for the same input.
func BuildURLMappings(data *SourceData) []URLMapping {
	var out []URLMapping
	for _, p := range data.Posts {
		if from := oldPath(p.Link); from != "" {
			out = append(out, URLMapping{From: "/" + from, To: "/blog/" + p.Slug, Type: "post", ID: p.ID, Title: p.Title.Rendered})
		}
	}
	for _, p := range data.Pages {
		from := oldPath(p.Link)
		if from == "" {
			continue
		}
		to, ok := pageRoutes[p.Slug]
		if !ok {
			to = "/" + p.Slug
		}
		out = append(out, URLMapping{From: "/" + from, To: to, Type: "page", ID: p.ID, Title: p.Title.Rendered})
	}
	for _, c := range data.Categories {
		if from := oldPath(c.Link); from != "" {
			out = append(out, URLMapping{From: "/" + from, To: "/blog/category/" + c.Slug, Type: "category", ID: c.ID, Name: c.Name})
		}
	}
	for _, t := range data.Tags {
		if from := oldPath(t.Link); from != "" {
			out = append(out, URLMapping{From: "/" + from, To: "/blog/tag/" + t.Slug, Type: "tag", ID: t.ID, Name: t.Name})
		}
	}
	if out == nil {
		out = []URLMapping{}
	}
	return out
}

// Breakdown counts mappings per type.
func Breakdown(mappings []URLMapping) map[string]int {
	out := map[string]int{}
	for _, m := range mappings {
		out[m.Type]++
	}
	return out
}

type URLMapService struct {
	exportDir  string
	outputPath string
}

func NewURLMapService(exportDir, outputPath string) *URLMapService {
	return &URLMapService{exportDir: exportDir, outputPath: outputPath}
}

func (s *URLMapService) Run(ctx context.Context) ([]URLMapping, error) {
	data := &SourceData{}
	var err error
	if data.Posts, err = loadExport[wordpress.Post](ctx, s.exportDir, "posts.json"); err != nil {
		return nil, err
	}
	if data.Pages, err = loadExport[wordpress.Page](ctx, s.exportDir, "pages.json"); err != nil {
		return nil, err
	}
	if data.Categories, err = loadExport[wordpress.Category](ctx, s.exportDir, "categories.json"); err != nil {
		return nil, err
	}
	if data.Tags, err = loadExport[wordpress.Tag](ctx, s.exportDir, "tags.json"); err != nil {
		return nil, err
	}
	mappings := BuildURLMappings(data)
	if err := jsonfile.Write(s.outputPath, mappings); err != nil {
		return nil, err
	}
	logger := logutil.GetLogger(ctx)
	logger.Info("url mappings created", zap.Int("total", len(mappings)), zap.String("path", s.outputPath))
	breakdown := Breakdown(mappings)
	types := make([]string, 0, len(breakdown))
	for t := range breakdown {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		logger.Info("url mappings by type", zap.String("type", t), zap.Int("count", breakdown[t]))
	}
	return mappings, nil
}
