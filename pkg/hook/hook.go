// Package hook runs user-supplied transformations on resolved parts before
// they are handed to a sink.
//
// A [Hook] is a single-method capability. Hooks come from two places: Go
// code registered by name with [Register] (the built-ins live in
// builtin.go), and declarative rules in hooks.yaml (see [ParseYAML]).
//
// [Runner.Run] applies hooks strictly in order. Each hook works on a clone
// of the part; the clone replaces the part only when the hook returns
// without error or panic. A failing hook is recorded on the part and the
// next hook still runs.
package hook

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/partimport/pkg/observability"
	"github.com/matzehuels/partimport/pkg/part"
)

// Hook transforms a part in place.
type Hook interface {
	Name() string
	Apply(p *part.Resolved) error
}

// Func adapts a function to [Hook].
func Func(name string, fn func(*part.Resolved) error) Hook {
	return funcHook{name: name, fn: fn}
}

type funcHook struct {
	name string
	fn   func(*part.Resolved) error
}

func (h funcHook) Name() string                 { return h.name }
func (h funcHook) Apply(p *part.Resolved) error { return h.fn(p) }

// Runner applies hooks with per-hook isolation.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner that logs failures to logger, or to
// log.Default() when logger is nil.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Run applies hooks to p in order and returns the resulting part. p itself
// is never modified; the returned part carries a [part.HookFailure] for
// every hook that failed.
func (r *Runner) Run(ctx context.Context, hooks []Hook, p *part.Resolved) *part.Resolved {
	cur := p.Clone()
	for _, h := range hooks {
		next := cur.Clone()
		failure := r.apply(h, next)
		if failure == nil {
			cur = next
			continue
		}
		r.Logger.Warn("hook failed",
			"hook", failure.Hook,
			"part", cur.Key(),
			"mpn", cur.MPN,
			"panic", failure.Panic,
			"err", failure.Error)
		observability.Import().OnHookFailure(ctx, failure.Hook, failure.Panic)
		cur.HookErrors = append(cur.HookErrors, *failure)
	}
	return cur
}

func (r *Runner) apply(h Hook, p *part.Resolved) (failure *part.HookFailure) {
	name := h.Name()
	defer func() {
		if v := recover(); v != nil {
			r.Logger.Debug("hook panic", "hook", name, "stack", string(debug.Stack()))
			failure = &part.HookFailure{Hook: name, Error: fmt.Sprint(v), Panic: true}
		}
	}()
	if err := h.Apply(p); err != nil {
		return &part.HookFailure{Hook: name, Error: err.Error()}
	}
	return nil
}
