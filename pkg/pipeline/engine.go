package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/partimport/pkg/category"
	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/hook"
	"github.com/matzehuels/partimport/pkg/observability"
	"github.com/matzehuels/partimport/pkg/parameter"
	"github.com/matzehuels/partimport/pkg/part"
)

// SkippedParameter is a raw parameter that was not mapped.
type SkippedParameter struct {
	Name   string               `json:"name"`
	Reason parameter.SkipReason `json:"reason"`
}

// Outcome describes how one part was resolved.
type Outcome struct {
	Result   part.Result        `json:"result"`
	Category category.Result    `json:"-"`
	Skipped  []SkippedParameter `json:"skipped,omitempty"`
	// Err is set for Error results, and for Incomplete results caused by
	// failing hooks.
	Err error `json:"-"`

	// misplaced is set when hooks moved the part to a category it cannot
	// be assigned to.
	misplaced bool
}

// MarshalJSON flattens the category reason and the error message.
func (o Outcome) MarshalJSON() ([]byte, error) {
	out := struct {
		Result  part.Result        `json:"result"`
		Reason  category.Reason    `json:"reason,omitempty"`
		Skipped []SkippedParameter `json:"skipped,omitempty"`
		Error   string             `json:"error,omitempty"`
	}{Result: o.Result, Reason: o.Category.Reason, Skipped: o.Skipped}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return json.Marshal(out)
}

// Engine resolves parts against the current [Snapshot].
//
// The engine is safe for concurrent use. Each resolution reads the snapshot
// once at its start, so a concurrent [Engine.Swap] never mixes two
// configurations within one part.
type Engine struct {
	snap   atomic.Pointer[Snapshot]
	hooks  *hook.Runner
	Logger *log.Logger
}

// NewEngine creates an engine serving s. A nil logger uses log.Default().
func NewEngine(s *Snapshot, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{hooks: hook.NewRunner(logger), Logger: logger}
	e.snap.Store(s)
	return e
}

// Snapshot returns the current snapshot.
func (e *Engine) Snapshot() *Snapshot { return e.snap.Load() }

// Swap installs s and returns the previous snapshot.
func (e *Engine) Swap(ctx context.Context, s *Snapshot) *Snapshot {
	old := e.snap.Swap(s)
	observability.Import().OnSnapshotSwap(ctx, s.Tree.Len(), s.Schema.Len())
	e.Logger.Info("configuration reloaded",
		"categories", s.Tree.Len(),
		"parameters", s.Schema.Len(),
		"hooks", len(s.Hooks))
	return old
}

// Reload loads src and swaps the result in. On error the current snapshot
// stays in place.
func (e *Engine) Reload(ctx context.Context, src Sources) error {
	s, err := Load(src)
	if err != nil {
		return err
	}
	e.Swap(ctx, s)
	return nil
}

// Resolve maps raw onto the taxonomy. The part is nil when the category
// did not resolve; Outcome.Category then carries the reason.
func (e *Engine) Resolve(ctx context.Context, raw *part.Raw) (*part.Resolved, Outcome) {
	start := time.Now()
	snap := e.snap.Load()

	res := snap.Categories.Resolve(raw.CategoryPath)
	if !res.Resolved() {
		observability.Import().OnCategoryUnresolved(ctx, raw.Supplier, string(res.Reason))
		e.Logger.Warn("category unresolved",
			"part", raw.Key(),
			"path", category.JoinPath(raw.CategoryPath),
			"reason", res.Reason)
		out := Outcome{Result: part.Failure, Category: res}
		e.finish(ctx, raw, out, start)
		return nil, out
	}
	return e.resolveIn(ctx, snap, raw, res, start)
}

// ResolveIn maps raw into the category at path, given as root-to-leaf
// names, ignoring the supplier's own category path. It is used after
// manual categorization.
func (e *Engine) ResolveIn(ctx context.Context, raw *part.Raw, path []string) (*part.Resolved, Outcome) {
	start := time.Now()
	snap := e.snap.Load()

	id, ok := snap.Tree.FindPath(path)
	if !ok || !snap.Tree.Assignable(id) {
		out := Outcome{
			Result: part.Error,
			Err:    errors.New(errors.ErrCodeInvalidInput, "%s is not an assignable category", category.JoinPath(path)),
		}
		e.finish(ctx, raw, out, start)
		return nil, out
	}
	return e.resolveIn(ctx, snap, raw, category.Result{ID: id, Segment: -1}, start)
}

func (e *Engine) resolveIn(ctx context.Context, snap *Snapshot, raw *part.Raw, res category.Result, start time.Time) (*part.Resolved, Outcome) {
	tree := snap.Tree
	hooks := observability.Import()
	out := Outcome{Result: part.Success, Category: res}

	p := part.NewResolved(uuid.New(), raw)
	p.CategoryPath = tree.PathOf(res.ID)

	allowed := tree.ParameterSet(res.ID)
	for _, name := range raw.OrderedParameters() {
		o := snap.Parameters.Resolve(name, raw.Parameters[name], allowed)
		if o.OK() {
			if _, dup := p.Parameters[o.Definition.Name]; dup {
				o.Skipped = parameter.SkipDuplicate
			}
		}
		if !o.OK() {
			out.Skipped = append(out.Skipped, SkippedParameter{Name: name, Reason: o.Skipped})
			hooks.OnParameterSkipped(ctx, string(o.Skipped))
			e.Logger.Debug("parameter skipped", "part", p.Key(), "name", name, "reason", o.Skipped)
			continue
		}
		if o.Warning != "" {
			p.Warn(fmt.Sprintf("%s: %s", o.Definition.Name, o.Warning))
			hooks.OnUnitWarning(ctx, o.Definition.Name)
			e.Logger.Warn("value kept verbatim",
				"part", p.Key(),
				"parameter", o.Definition.Name,
				"value", o.Value.Raw,
				"err", o.Warning)
		}
		p.Parameters[o.Definition.Name] = o.Value
	}

	p = e.hooks.Run(ctx, snap.Hooks, p)
	if n := len(p.HookErrors); n > 0 {
		out.Err = errors.New(errors.ErrCodeHookFailed, "%d of %d hooks failed on %s", n, len(snap.Hooks), p.Key())
	}

	// Hooks may move the part to another category.
	final := res.ID
	if id, ok := tree.FindPath(p.CategoryPath); ok && tree.Assignable(id) {
		final = id
	} else {
		p.Warn(fmt.Sprintf("category %s is not an assignable category", category.JoinPath(p.CategoryPath)))
		out.misplaced = true
	}

	for _, name := range tree.EffectiveParameters(final) {
		if _, ok := p.Parameters[name]; !ok {
			p.Unassigned = append(p.Unassigned, name)
		}
	}
	out.Result = grade(p, out)

	e.finish(ctx, raw, out, start)
	return p, out
}

// Assign sets the unassigned parameter name of p to value, as chosen
// during interactive matching, and re-grades out. The value is sanitized
// and normalized like a supplier value.
func (e *Engine) Assign(p *part.Resolved, out *Outcome, name, value string) error {
	i := slices.Index(p.Unassigned, name)
	if i < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "parameter %q of %s is not unassigned", name, p.Key())
	}
	o := e.snap.Load().Parameters.ResolveAs(name, value)
	if !o.OK() {
		return errors.New(errors.ErrCodeInvalidInput, "value %q for %s: %s", value, name, o.Skipped)
	}
	if o.Warning != "" {
		p.Warn(fmt.Sprintf("%s: %s", o.Definition.Name, o.Warning))
	}
	p.Parameters[o.Definition.Name] = o.Value
	p.Unassigned = slices.Delete(p.Unassigned, i, i+1)
	out.Result = grade(p, *out)
	e.Logger.Debug("parameter assigned", "part", p.Key(), "name", o.Definition.Name, "value", o.Value.Text)
	return nil
}

// grade derives the result of a resolved part. Error and Failure are final.
func grade(p *part.Resolved, out Outcome) part.Result {
	if out.Result < part.Incomplete {
		return out.Result
	}
	if len(p.HookErrors) > 0 || out.misplaced || len(p.Unassigned) > 0 {
		return part.Incomplete
	}
	return part.Success
}

func (e *Engine) finish(ctx context.Context, raw *part.Raw, out Outcome, start time.Time) {
	d := time.Since(start)
	observability.Import().OnPartResolved(ctx, raw.Supplier, out.Result.String(), d)
	e.Logger.Debug("part resolved",
		"part", raw.Key(),
		"result", out.Result,
		"skipped", len(out.Skipped),
		"duration", d)
}
