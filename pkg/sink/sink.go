// Package sink delivers resolved parts to their destination.
//
// The batch runner calls [Sink.Write] from a single goroutine, so
// implementations need no locking of their own. Three sinks ship with
// partimport: [JSONL] appends one JSON document per line, [DryRun] only
// logs, and [Mongo] upserts into a MongoDB collection keyed by supplier
// and SKU.
package sink

import (
	"context"
	"time"

	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/observability"
	"github.com/matzehuels/partimport/pkg/part"
)

// Sink receives resolved parts.
type Sink interface {
	Write(ctx context.Context, p *part.Resolved) error
	Close() error
}

// Instrument reports every write of s to the registered sink hooks under
// name and wraps failures in an ErrCodeSink error.
func Instrument(name string, s Sink) Sink {
	return &instrumented{name: name, inner: s}
}

type instrumented struct {
	name  string
	inner Sink
}

func (s *instrumented) Write(ctx context.Context, p *part.Resolved) error {
	start := time.Now()
	err := s.inner.Write(ctx, p)
	observability.Sink().OnSinkWrite(ctx, s.name, time.Since(start), err)
	if err != nil && !errors.Is(err, errors.ErrCodeSink) {
		return errors.Wrap(errors.ErrCodeSink, err, "%s: write %s", s.name, p.Key())
	}
	return err
}

func (s *instrumented) Close() error { return s.inner.Close() }

// Memory collects parts in memory. The server uses it to answer a single
// resolve request; tests use it to inspect a batch.
type Memory struct {
	Parts []*part.Resolved
}

// Write appends a copy of p.
func (m *Memory) Write(_ context.Context, p *part.Resolved) error {
	m.Parts = append(m.Parts, p.Clone())
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
