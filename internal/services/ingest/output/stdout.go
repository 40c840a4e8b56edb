package output

import (
	"context"
	"io"

	perr "hamfinder/internal/platform/errors"
	"hamfinder/internal/services/ingest/domain"
)

// Writer prints the run's records as indented JSON, e.g. to stdout after the summary
type Writer struct {
	W io.Writer
}

var _ domain.Sink = Writer{}

// Name implements domain.Sink
func (Writer) Name() string { return "stdout" }

// Persist implements domain.Sink
func (s Writer) Persist(_ context.Context, _ string, rs domain.ResultSet) (string, error) {
	if err := WriteJSON(s.W, rs); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodePersistence, "print result set")
	}
	return "stdout", nil
}
