// Package pipeline ties category resolution, parameter resolution and hooks
// into the import of a single part, and runs batches of imports.
//
// This package is used by the CLI and the HTTP server alike, so both apply
// the same resolution rules, defaults and logging.
//
// # Architecture
//
// A part passes four stages:
//
//  1. Category: the supplier's category path is resolved against the tree
//  2. Parameters: raw parameters are mapped onto the category's effective set
//  3. Hooks: user transformations run in order, each isolated from failures
//  4. Sink: the resolved part is written, one part at a time
//
// The tree, schema and hooks form an immutable [Snapshot]. An [Engine]
// holds the current snapshot behind an atomic pointer; reloading the
// taxonomy builds a new snapshot and swaps it in without blocking
// resolutions that are already running.
//
// # Usage
//
//	snap, err := pipeline.Load(pipeline.Sources{
//	    Categories: "categories.yaml",
//	    Parameters: "parameters.yaml",
//	})
//	if err != nil {
//	    log.Fatal(err) // config errors abort before anything is imported
//	}
//	engine := pipeline.NewEngine(snap, logger)
//	runner := pipeline.NewRunner(engine, pipeline.Options{Workers: 8}, logger)
//	report, err := runner.Import(ctx, raws, sink.NewDryRun(logger))
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"github.com/matzehuels/partimport/pkg/category"
	"github.com/matzehuels/partimport/pkg/parameter"
	"github.com/matzehuels/partimport/pkg/part"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultSuggestions is how many categories are offered when a part
	// needs manual categorization.
	DefaultSuggestions = 5

	// MaxWorkers caps concurrent resolutions. Supplier lookups dominate a
	// batch and suppliers rate-limit aggressively.
	MaxWorkers = 64
)

// DefaultWorkers is the default number of concurrent resolutions.
var DefaultWorkers = min(runtime.NumCPU(), 8)

// =============================================================================
// Options - Batch Configuration
// =============================================================================

// CategorizeFunc asks for a category for a part whose category path did
// not match anything. It returns the root-to-leaf names of the chosen
// category, or nil to leave the part unimported. Returning an error aborts
// the batch.
type CategorizeFunc func(ctx context.Context, raw *part.Raw, suggestions []category.Suggestion) ([]string, error)

// AssignFunc asks for the value of the category parameter name that no raw
// parameter matched. candidates are the raw parameters ranked by
// similarity. It returns the value to use, or "" to leave the parameter
// unassigned. Returning an error aborts the batch.
type AssignFunc func(ctx context.Context, raw *part.Raw, name string, candidates []parameter.Candidate) (string, error)

// Options configures a [Runner].
type Options struct {
	// Workers bounds concurrent resolutions. Zero uses DefaultWorkers.
	Workers int

	// Categorize, when set, is called for every no_match part. Calls never
	// overlap, so an implementation may prompt on a terminal.
	Categorize CategorizeFunc

	// Assign, when set, is called for every parameter a resolved part is
	// missing. Calls never overlap with each other or with Categorize.
	Assign AssignFunc

	// Suggestions is the number of suggestions passed to Categorize and
	// Assign.
	Suggestions int

	validated bool
}

// ValidateAndSetDefaults checks the options and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Workers < 0 || o.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d, got %d", MaxWorkers, o.Workers)
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Suggestions <= 0 {
		o.Suggestions = DefaultSuggestions
	}
	o.validated = true
	return nil
}
