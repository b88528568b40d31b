package settings

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
)

const (
	// OpenRetryInterval is the wait between attempts to open a busy file.
	OpenRetryInterval = 324 * time.Millisecond

	// OpenTimeout bounds the total time spent waiting for a busy file.
	OpenTimeout = 2 * time.Second
)

// ErrOpenTimeout is returned when a file stays unavailable for longer than
// the open timeout.
var ErrOpenTimeout = errors.New("file not available within timeout")

// Opener opens a file like os.OpenFile.
type Opener func(name string, flag int, perm os.FileMode) (*os.File, error)

// OpenFile opens name like os.OpenFile, but waits for a file that is
// temporarily unavailable, for instance locked by another program, retrying
// every OpenRetryInterval for up to OpenTimeout. A missing file, or one that
// must not exist yet, fails immediately.
func OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return openRetry(os.OpenFile, OpenRetryInterval, OpenTimeout, log.New(io.Discard), name, flag, perm)
}

func openRetry(open Opener, interval, timeout time.Duration, logger *log.Logger,
	name string, flag int, perm os.FileMode) (*os.File, error) {
	var f *os.File
	attempt := 0
	op := func() error {
		var err error
		f, err = open(name, flag, perm)
		if err == nil {
			return nil
		}
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrExist) {
			return backoff.Permanent(err)
		}
		if attempt == 0 {
			logger.Warn("file not available, waiting for it to be freed", "path", name, "error", err)
		}
		attempt++
		return err
	}

	retries := uint64(0)
	if interval > 0 {
		retries = uint64(timeout / interval)
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), retries)
	if err := backoff.Retry(op, b); err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenTimeout, name, err)
	}
	logger.Debug("file opened", "path", name, "attempts", attempt+1)
	return f, nil
}
