package sink

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/partimport/pkg/part"
)

// DryRun logs what would be written and discards the part.
type DryRun struct {
	Logger *log.Logger
	count  int
}

// NewDryRun creates a dry-run sink logging at info level. A nil logger uses
// log.Default().
func NewDryRun(logger *log.Logger) *DryRun {
	if logger == nil {
		logger = log.Default()
	}
	return &DryRun{Logger: logger}
}

// Write logs p.
func (s *DryRun) Write(_ context.Context, p *part.Resolved) error {
	s.count++
	s.Logger.Info("would import",
		"part", p.Key(),
		"mpn", p.MPN,
		"category", strings.Join(p.CategoryPath, " / "),
		"parameters", len(p.Parameters),
		"unassigned", len(p.Unassigned))
	for name, v := range p.Parameters {
		s.Logger.Debug("parameter", "part", p.Key(), "name", name, "value", v.Text)
	}
	return nil
}

// Count returns the number of parts written.
func (s *DryRun) Count() int { return s.count }

// Close logs the total.
func (s *DryRun) Close() error {
	s.Logger.Info("dry run finished", "parts", s.count)
	return nil
}
