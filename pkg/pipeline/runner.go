package pipeline

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/partimport/pkg/category"
	"github.com/matzehuels/partimport/pkg/part"
	"github.com/matzehuels/partimport/pkg/sink"
	"github.com/matzehuels/partimport/pkg/supplier"
)

// Request asks for one part by search term. An empty Supplier searches
// every registered supplier.
type Request struct {
	Term     string      `json:"term"`
	Supplier supplier.ID `json:"supplier,omitempty"`
	Quantity int         `json:"quantity,omitempty"`
}

// Item is the record of one part in a batch.
type Item struct {
	Index    int            `json:"index"`
	Key      string         `json:"key"`
	Request  *Request       `json:"request,omitempty"`
	Part     *part.Resolved `json:"part,omitempty"`
	Outcome  Outcome        `json:"outcome"`
	Manually bool           `json:"manually_categorized,omitempty"`
}

// Report summarizes a batch.
type Report struct {
	RunID    uuid.UUID     `json:"run_id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Items    []Item        `json:"items"`
}

// Result is the worst result of all items, or Success for an empty batch.
func (r *Report) Result() part.Result {
	res := part.Success
	for i := range r.Items {
		res = res.Worse(r.Items[i].Outcome.Result)
	}
	return res
}

// Counts returns the number of items per result.
func (r *Report) Counts() map[part.Result]int {
	out := make(map[part.Result]int)
	for i := range r.Items {
		out[r.Items[i].Outcome.Result]++
	}
	return out
}

// Ignored returns the number of parts skipped because their category is
// ignored.
func (r *Report) Ignored() int {
	n := 0
	for i := range r.Items {
		if r.Items[i].Outcome.Category.Reason == category.ReasonIgnoredTarget {
			n++
		}
	}
	return n
}

// Runner imports batches of parts through an [Engine].
//
// Resolutions run concurrently, bounded by Options.Workers. Sink writes
// happen on a single goroutine in completion order. One part failing never
// stops the batch; only context cancellation or a Categorize or Assign
// error does.
type Runner struct {
	Engine *Engine
	Logger *log.Logger

	opts   Options
	prompt sync.Mutex
}

// NewRunner creates a runner. Invalid options fall back to the defaults
// after logging a warning. A nil logger uses the engine's logger.
func NewRunner(e *Engine, opts Options, logger *log.Logger) *Runner {
	if logger == nil {
		logger = e.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		logger.Warn("invalid runner options, using defaults", "err", err)
		opts = Options{Categorize: opts.Categorize, Assign: opts.Assign}
		_ = opts.ValidateAndSetDefaults()
	}
	return &Runner{Engine: e, Logger: logger, opts: opts}
}

// Import resolves raws and writes every resolved part to s.
func (r *Runner) Import(ctx context.Context, raws []*part.Raw, s sink.Sink) (*Report, error) {
	return r.run(ctx, len(raws), s, func(_ context.Context, i int, item *Item) (*part.Raw, error) {
		item.Key = raws[i].Key()
		return raws[i], nil
	})
}

// ImportRequests looks each request up in reg, then resolves and writes
// the parts like [Runner.Import]. Lookups run on the worker goroutines.
func (r *Runner) ImportRequests(ctx context.Context, reqs []Request, reg *supplier.Registry, s sink.Sink) (*Report, error) {
	return r.run(ctx, len(reqs), s, func(ctx context.Context, i int, item *Item) (*part.Raw, error) {
		req := &reqs[i]
		item.Request = req
		item.Key = req.Term
		var (
			raw *part.Raw
			err error
		)
		if req.Supplier == "" {
			raw, err = reg.FindAny(ctx, req.Term)
		} else {
			raw, err = reg.Find(ctx, req.Supplier, req.Term)
		}
		if err != nil {
			return nil, err
		}
		item.Key = raw.Key()
		return raw, nil
	})
}

type fetchFunc func(ctx context.Context, i int, item *Item) (*part.Raw, error)

func (r *Runner) run(ctx context.Context, n int, s sink.Sink, fetch fetchFunc) (*Report, error) {
	report := &Report{RunID: uuid.New(), Started: time.Now(), Items: make([]Item, n)}
	logger := r.Logger.With("run", report.RunID.String()[:8])
	logger.Info("import started", "parts", n, "workers", r.opts.Workers)

	writes := make(chan int)
	written := make(chan struct{})
	go func() {
		defer close(written)
		for i := range writes {
			item := &report.Items[i]
			if err := s.Write(ctx, item.Part); err != nil {
				logger.Error("sink write failed", "part", item.Key, "err", err)
				item.Outcome.Result = part.Error
				item.Outcome.Err = err
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			item := &report.Items[i]
			item.Index = i
			if err := r.process(gctx, logger, i, item, fetch); err != nil {
				return err
			}
			if item.Part == nil {
				return nil
			}
			select {
			case writes <- i:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	err := g.Wait()
	close(writes)
	<-written

	report.Duration = time.Since(report.Started)
	counts := report.Counts()
	logger.Info("import finished",
		"success", counts[part.Success],
		"incomplete", counts[part.Incomplete],
		"failure", counts[part.Failure],
		"error", counts[part.Error],
		"duration", report.Duration)
	if err == nil {
		err = ctx.Err()
	}
	return report, err
}

func (r *Runner) process(ctx context.Context, logger *log.Logger, i int, item *Item, fetch fetchFunc) error {
	raw, err := fetch(ctx, i, item)
	if err != nil {
		logger.Warn("part lookup failed", "term", item.Key, "err", err)
		item.Outcome = Outcome{Result: part.Error, Err: err}
		return nil
	}

	item.Part, item.Outcome = r.Engine.Resolve(ctx, raw)
	if item.Outcome.Category.Reason == category.ReasonNoMatch && r.opts.Categorize != nil {
		path, err := r.askCategory(ctx, raw)
		if err != nil {
			return err
		}
		if path == nil {
			return nil
		}
		item.Part, item.Outcome = r.Engine.ResolveIn(ctx, raw, path)
		item.Manually = true
	}

	if item.Part != nil && len(item.Part.Unassigned) > 0 && r.opts.Assign != nil {
		return r.askParameters(ctx, logger, raw, item)
	}
	return nil
}

func (r *Runner) askCategory(ctx context.Context, raw *part.Raw) ([]string, error) {
	r.prompt.Lock()
	defer r.prompt.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	suggestions := r.Engine.Snapshot().Categories.Suggest(raw.CategoryPath, r.opts.Suggestions)
	return r.opts.Categorize(ctx, raw, suggestions)
}

func (r *Runner) askParameters(ctx context.Context, logger *log.Logger, raw *part.Raw, item *Item) error {
	r.prompt.Lock()
	defer r.prompt.Unlock()

	params := r.Engine.Snapshot().Parameters
	for _, name := range slices.Clone(item.Part.Unassigned) {
		if err := ctx.Err(); err != nil {
			return err
		}
		candidates := params.Suggest(name, raw.Parameters, r.opts.Suggestions)
		value, err := r.opts.Assign(ctx, raw, name, candidates)
		if err != nil {
			return err
		}
		if value == "" {
			continue
		}
		if err := r.Engine.Assign(item.Part, &item.Outcome, name, value); err != nil {
			logger.Warn("parameter not assigned", "part", item.Key, "name", name, "err", err)
		}
	}
	return nil
}
