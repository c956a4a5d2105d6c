package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/wpmigrate/internal/filestore"
	"github.com/xxxsen/wpmigrate/internal/pkg/jsonfile"
	"github.com/xxxsen/wpmigrate/internal/wordpress"
)

const maxMediaSize = 512 * 1024 * 1024

type MediaFetchResult struct {
	Total      int           `json:"total"`
	Downloaded int           `json:"downloaded"`
	Existing   int           `json:"existing"`
	Failed     int           `json:"failed"`
	NoURL      int           `json:"no_url"`
	Duration   time.Duration `json:"duration"`
}

// MediaSidecar is stored next to each asset as "{key}.meta.json".
type MediaSidecar struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AltText     string `json:"alt_text"`
	Caption     string `json:"caption"`
	Description string `json:"description"`
	MimeType    string `json:"mime_type"`
	Width       *int   `json:"width,omitempty"`
	Height      *int   `json:"height,omitempty"`
	FileSize    *int64 `json:"file_size,omitempty"`
	Date        string `json:"date"`
	SourceURL   string `json:"source_url"`
}

// MediaService downloads every exported attachment into the file store.
// Keys already present are skipped, so reruns resume where they stopped.
type MediaService struct {
	store      filestore.Store
	httpClient *http.Client
	exportDir  string
	delay      time.Duration
	now        func() time.Time
}

func NewMediaService(store filestore.Store, exportDir string, timeout, delay time.Duration) *MediaService {
	return &MediaService{
		store:      store,
		httpClient: &http.Client{Timeout: timeout},
		exportDir:  exportDir,
		delay:      delay,
		now:        time.Now,
	}
}

func (s *MediaService) Run(ctx context.Context) (*MediaFetchResult, error) {
	var items []wordpress.Media
	path := filepath.Join(s.exportDir, "media.json")
	ok, err := jsonfile.Read(path, &items)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s not found, run the export first", path)
	}
	return s.Fetch(ctx, items)
}

func (s *MediaService) Fetch(ctx context.Context, items []wordpress.Media) (*MediaFetchResult, error) {
	start := s.now()
	logger := logutil.GetLogger(ctx)
	result := &MediaFetchResult{Total: len(items)}
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		progress := fmt.Sprintf("%d/%d", i+1, len(items))
		if item.SourceURL == "" {
			result.NoURL++
			logger.Info("media has no source url", zap.String("progress", progress), zap.Int64("wp_id", item.ID))
			continue
		}
		date, err := ParseSourceDate(item.Date)
		if err != nil {
			result.Failed++
			logger.Error("media date invalid", zap.Int64("wp_id", item.ID), zap.Error(err))
			continue
		}
		key, err := MediaKey(item.SourceURL, date)
		if err != nil {
			result.Failed++
			logger.Error("media key invalid", zap.Int64("wp_id", item.ID), zap.Error(err))
			continue
		}
		exists, err := s.store.Exists(ctx, key)
		if err != nil {
			result.Failed++
			logger.Error("media lookup failed", zap.String("key", key), zap.Error(err))
			continue
		}
		if exists {
			result.Existing++
			logger.Info("media already exists", zap.String("progress", progress), zap.String("key", key))
			continue
		}
		logger.Info("downloading media", zap.String("progress", progress), zap.String("key", key))
		if err := s.download(ctx, item, key); err != nil {
			result.Failed++
			logger.Error("media download failed", zap.String("url", item.SourceURL), zap.Error(err))
		} else {
			result.Downloaded++
		}
		if err := sleepCtx(ctx, s.delay); err != nil {
			return result, err
		}
	}
	result.Duration = s.now().Sub(start)
	logger.Info("media download complete",
		zap.Int("total", result.Total), zap.Int("downloaded", result.Downloaded), zap.Int("existing", result.Existing),
		zap.Int("failed", result.Failed), zap.Int("no_url", result.NoURL), zap.Duration("duration", result.Duration))
	return result, nil
}

func (s *MediaService) download(ctx context.Context, item wordpress.Media, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.SourceURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaSize))
	if err != nil {
		return err
	}
	// The sidecar goes first: the asset key is what marks an item done.
	meta, err := json.MarshalIndent(sidecarFor(item), "", "  ")
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, key+".meta.json", bytes.NewReader(meta), int64(len(meta))); err != nil {
		return fmt.Errorf("save sidecar: %w", err)
	}
	return s.store.Save(ctx, key, bytes.NewReader(data), int64(len(data)))
}

func sidecarFor(item wordpress.Media) *MediaSidecar {
	sc := &MediaSidecar{
		ID:          item.ID,
		Title:       item.Title.Rendered,
		AltText:     item.AltText,
		Caption:     item.Caption.Rendered,
		Description: item.Description.Rendered,
		MimeType:    item.MimeType,
		Date:        item.Date,
		SourceURL:   item.SourceURL,
	}
	if d := item.MediaDetails; d != nil {
		sc.Width = positive(d.Width)
		sc.Height = positive(d.Height)
		if d.FileSize > 0 {
			size := d.FileSize
			sc.FileSize = &size
		}
	}
	return sc
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
