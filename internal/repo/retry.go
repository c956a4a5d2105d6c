package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	appErr "github.com/xxxsen/wpmigrate/internal/pkg/errors"
)

// ReadRetryMaxElapsed bounds how long read paths keep retrying after a
// dropped connection.
var ReadRetryMaxElapsed = 15 * time.Second

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, frag := range []string{
		"driver: bad connection",
		"connection reset",
		"broken pipe",
		"connection refused",
		"i/o timeout",
		"unexpected eof",
		"terminating connection",
		"server closed the connection",
	} {
		if strings.Contains(errStr, frag) {
			return true
		}
	}
	return false
}

// withReadRetry runs a read with backoff on transient connection errors.
// database/sql replaces a bad pooled connection on the next attempt.
func withReadRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxElapsedTime = ReadRetryMaxElapsed
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, appErr.ErrNotFound) || !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}
