package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/wpmigrate/internal/service"
)

// PostImporter is the incremental importer run by the sync job.
type PostImporter interface {
	Run(ctx context.Context) (*service.APIImportResult, error)
}

type PostSyncJob struct {
	importer PostImporter
}

func NewPostSyncJob(importer PostImporter) *PostSyncJob {
	return &PostSyncJob{importer: importer}
}

func (j *PostSyncJob) Name() string {
	return "post_sync"
}

func (j *PostSyncJob) Run(ctx context.Context) error {
	if j.importer == nil {
		return nil
	}
	result, err := j.importer.Run(ctx)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("post sync done",
		zap.Int("total", result.Total), zap.Int("created", result.Created),
		zap.Int("updated", result.Updated), zap.Int("failed", result.Failed))
	return nil
}
