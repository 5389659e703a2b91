package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/part"
)

// JSONL writes one JSON document per part and line.
type JSONL struct {
	w      *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONL writes to w. Close flushes but does not close w.
func NewJSONL(w io.Writer) *JSONL {
	bw := bufio.NewWriter(w)
	return &JSONL{w: bw, enc: json.NewEncoder(bw)}
}

// OpenJSONL appends to the file at path, creating it if needed.
func OpenJSONL(path string) (*JSONL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSink, err, "open %s", path)
	}
	s := NewJSONL(f)
	s.closer = f
	return s, nil
}

// Write encodes p as a single line.
func (s *JSONL) Write(_ context.Context, p *part.Resolved) error {
	if err := s.enc.Encode(p); err != nil {
		return errors.Wrap(errors.ErrCodeSink, err, "encode %s", p.Key())
	}
	return nil
}

// Close flushes buffered lines and closes the file opened by [OpenJSONL].
func (s *JSONL) Close() error {
	err := s.w.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
