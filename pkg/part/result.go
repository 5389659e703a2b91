package part

import "fmt"

// Result is the outcome of importing one part, ordered from worst to best.
type Result int

const (
	// Error means the import could not be attempted (supplier lookup or
	// sink write failed).
	Error Result = iota
	// Failure means the part was not imported: its category did not
	// resolve.
	Failure
	// Incomplete means the part was imported but some parameters of its
	// category have no value, or a hook failed.
	Incomplete
	// Success means the part was imported with every parameter set.
	Success
)

var resultNames = [...]string{"error", "failure", "incomplete", "success"}

// String returns the lowercase name of r.
func (r Result) String() string {
	if r < Error || r > Success {
		return fmt.Sprintf("Result(%d)", int(r))
	}
	return resultNames[r]
}

// Worse returns the worse of r and other.
func (r Result) Worse(other Result) Result {
	return min(r, other)
}

// MarshalText implements encoding.TextMarshaler.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Result) UnmarshalText(b []byte) error {
	for i, name := range resultNames {
		if name == string(b) {
			*r = Result(i)
			return nil
		}
	}
	return fmt.Errorf("unknown result %q", b)
}
