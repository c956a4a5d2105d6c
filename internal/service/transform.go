package service

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/xxxsen/wpmigrate/internal/model"
)

// MapStatus converts a WordPress post status. Anything unknown is a draft.
func MapStatus(status string) model.PostStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "publish":
		return model.PostStatusPublished
	case "draft":
		return model.PostStatusDraft
	case "future":
		return model.PostStatusScheduled
	default:
		return model.PostStatusDraft
	}
}

// ParseSourceDate parses a WordPress date. Zone-less values such as
// "2021-06-01T00:00:00" are read as UTC.
func ParseSourceDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t.UTC(), nil
}

// publishedAt is set only for published content.
func publishedAt(status model.PostStatus, date time.Time) *time.Time {
	if status != model.PostStatusPublished || date.IsZero() {
		return nil
	}
	t := date
	return &t
}

// FileNameFromURL returns the last path segment of u without its query.
func FileNameFromURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	if parsed, err := url.Parse(u); err == nil && parsed.Path != "" {
		u = parsed.Path
	} else if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	name := path.Base(u)
	if name == "." || name == "/" {
		return ""
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}

// MediaKey is the date partitioned location of an asset: "{yyyy}/{mm}/{name}".
func MediaKey(sourceURL string, date time.Time) (string, error) {
	name := FileNameFromURL(sourceURL)
	if name == "" {
		return "", fmt.Errorf("no file name in %q", sourceURL)
	}
	return fmt.Sprintf("%04d/%02d/%s", date.Year(), int(date.Month()), name), nil
}

// MediaURL is the public path of a migrated asset.
func MediaURL(sourceURL string, date time.Time) (string, error) {
	key, err := MediaKey(sourceURL, date)
	if err != nil {
		return "", err
	}
	return "/media/" + key, nil
}
