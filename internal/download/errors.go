package download

import (
	"context"
	"errors"

	"github.com/handiism/geodata-downloader/internal/http"
	ioutils "github.com/handiism/geodata-downloader/internal/io"
	"github.com/handiism/geodata-downloader/internal/model"
)

// LocalWriteError wraps a failure to create or commit a local artifact.
type LocalWriteError struct {
	Path string
	Err  error
}

func (e *LocalWriteError) Error() string {
	return "writing " + e.Path + ": " + e.Err.Error()
}

func (e *LocalWriteError) Unwrap() error {
	return e.Err
}

// Classify maps an item error to its ErrorKind. ctx is the batch context;
// once it is done every failure counts as cancelled.
func Classify(ctx context.Context, err error) model.ErrorKind {
	var (
		lwe *LocalWriteError
		we  *http.WriteError
	)

	switch {
	case err == nil:
		return model.KindNone
	case ctx.Err() != nil, errors.Is(err, context.Canceled):
		return model.KindCancelled
	case errors.Is(err, ioutils.ErrInvalidFileName):
		return model.KindInvalidInput
	case errors.As(err, &lwe), errors.As(err, &we):
		return model.KindLocalWriteFailure
	case http.IsNotFound(err):
		return model.KindNotFound
	default:
		return model.KindNetworkFailure
	}
}
