package job

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xxxsen/wpmigrate/internal/service"
)

type stubImporter struct {
	calls  int
	result *service.APIImportResult
	err    error
}

func (s *stubImporter) Run(context.Context) (*service.APIImportResult, error) {
	s.calls++
	return s.result, s.err
}

func TestPostSyncJob(t *testing.T) {
	ok := &stubImporter{result: &service.APIImportResult{Total: 3, Created: 1, Skipped: 2}}
	job := NewPostSyncJob(ok)
	assert.Equal(t, "post_sync", job.Name())
	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, ok.calls)

	failing := &stubImporter{err: errors.New("api down")}
	assert.EqualError(t, NewPostSyncJob(failing).Run(context.Background()), "api down")

	assert.NoError(t, NewPostSyncJob(nil).Run(context.Background()))
}
