// Package capture abstracts the collaborator that produces a still image on
// demand. The mechanism (webcam, browser upload, file on disk) is outside
// the workflow core; the workflow only sees encoded bytes.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrFailed means the capture source could not produce an image, for
// example because the device is missing or permission was denied.
var ErrFailed = errors.New("capture failed")

// Source produces one encoded still image per call.
type Source interface {
	Acquire(ctx context.Context) ([]byte, error)
}

// FileSource reads the capture from a file. Used by the CLI commands, where
// the "sensor" is a path on disk.
type FileSource struct {
	Path string
}

func (s FileSource) Acquire(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrFailed, s.Path)
	}
	return data, nil
}
