package category

import (
	"slices"
	"strings"

	"github.com/matzehuels/partimport/pkg/fold"
)

// Reason explains why a path did not resolve to an assignable category.
type Reason string

const (
	// ReasonNone marks a resolved path.
	ReasonNone Reason = ""
	// ReasonNoMatch means no segment names a category. The part needs
	// manual categorization.
	ReasonNoMatch Reason = "no_match"
	// ReasonStructuralTarget means the path ends at a structural category
	// and no deeper segment names one of its children.
	ReasonStructuralTarget Reason = "structural_target"
	// ReasonIgnoredTarget means the path matched an ignored category or a
	// descendant of one. Callers normally skip the part.
	ReasonIgnoredTarget Reason = "ignored_target"
)

// Result is the outcome of [Resolver.Resolve].
type Result struct {
	// ID is the resolved category. When Reason is set it is the node
	// resolution stopped at, or NoID for ReasonNoMatch.
	ID     ID
	Reason Reason
	// Segment is the index of the path segment that matched, or -1.
	Segment int
}

// Resolved reports whether the path resolved to an assignable category.
func (r Result) Resolved() bool { return r.Reason == ReasonNone }

// Resolver maps supplier category paths onto a [Tree].
type Resolver struct {
	tree *Tree
}

// NewResolver creates a resolver over tree.
func NewResolver(tree *Tree) *Resolver {
	return &Resolver{tree: tree}
}

// Tree returns the tree the resolver reads.
func (r *Resolver) Tree() *Tree { return r.tree }

// Resolve maps path, ordered root to leaf as the supplier reports it.
//
// Segments are tried from the last toward the first and the first one that
// names a category (by name or alias) wins, so a specific leaf alias beats
// a broader ancestor match. If the winning node is structural, resolution
// descends while the following segment names one of its direct children
// (see childFor). Consecutive duplicate segments are not collapsed.
func (r *Resolver) Resolve(path []string) Result {
	t := r.tree
	for i := len(path) - 1; i >= 0; i-- {
		id, ok := t.lookup(path[i])
		if !ok {
			continue
		}
		if t.ignored[id] {
			return Result{ID: id, Reason: ReasonIgnoredTarget, Segment: i}
		}

		for next := i + 1; t.nodes[id].Structural; next++ {
			if next >= len(path) {
				return Result{ID: id, Reason: ReasonStructuralTarget, Segment: i}
			}
			child, ok := t.childFor(id, path[next-1], path[next])
			if !ok {
				return Result{ID: id, Reason: ReasonStructuralTarget, Segment: i}
			}
			id = child
		}
		return Result{ID: id, Segment: i}
	}
	return Result{ID: NoID, Reason: ReasonNoMatch, Segment: -1}
}

// childFor returns the direct child of parent named by segment, where prev
// is the segment that named parent.
//
// Any segment after the winning one did not match a name or alias on its
// own, so a segment names a child when it forms the child's full name or
// alias together with prev, as in [Capacitors, Ceramic] for a child aliased
// "Ceramic Capacitors". Ignored children and matches shared by two
// children never count.
func (t *Tree) childFor(parent ID, prev, segment string) (ID, bool) {
	seg, pre := words(segment), words(prev)
	if seg == "" || pre == "" {
		return NoID, false
	}
	joined := []string{seg + " " + pre, pre + " " + seg}

	found := NoID
	for _, c := range t.nodes[parent].Children {
		if t.ignored[c] {
			continue
		}
		n := &t.nodes[c]
		for _, token := range append([]string{n.Name}, n.Aliases...) {
			if slices.Contains(joined, words(token)) {
				if found != NoID && found != c {
					return NoID, false
				}
				found = c
				break
			}
		}
	}
	return found, found != NoID
}

// words returns the lookup key of s with inner whitespace collapsed.
func words(s string) string {
	return strings.Join(strings.Fields(fold.Key(s)), " ")
}
