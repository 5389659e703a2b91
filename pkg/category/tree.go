package category

import (
	"iter"
	"slices"
	"strings"

	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/fold"
	"github.com/matzehuels/partimport/pkg/parameter"
)

// ID addresses a node in a [Tree]. IDs are dense indices assigned in
// depth-first declaration order and are only meaningful for the tree that
// produced them.
type ID int

// NoID is the ID of no node.
const NoID ID = -1

// Spec is the declarative description of a category and its subtree.
type Spec struct {
	Name        string
	Description string
	Aliases     []string
	Structural  bool
	Ignore      bool
	Parameters  []string
	Children    []Spec
}

// Node is a category in the arena.
type Node struct {
	ID          ID
	Name        string
	Description string
	Aliases     []string
	Structural  bool
	// Ignore is the node's own flag. Use [Tree.IsIgnored] to include
	// ignored ancestors.
	Ignore     bool
	Parameters []string // declared on this node only
	Parent     ID
	Children   []ID
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.Parent == NoID }

// Tree is an immutable category taxonomy.
type Tree struct {
	nodes     []Node
	roots     []ID
	index     map[string]ID // folded name or alias -> node, ignored nodes included
	effective [][]string
	ignored   []bool // node or an ancestor has Ignore set
}

// Build validates roots against schema and builds the tree.
//
// It fails with a config error (see [errors.IsConfig]) when a name is
// invalid, when a name or alias collides with any other name or alias in
// the tree, or when a node declares a parameter the schema does not define.
// Ignored nodes are validated like any other.
func Build(roots []Spec, schema *parameter.Schema) (*Tree, error) {
	b := &builder{
		schema: schema,
		t:      &Tree{index: make(map[string]ID)},
	}
	for i := range roots {
		id, err := b.add(&roots[i], NoID)
		if err != nil {
			return nil, err
		}
		b.t.roots = append(b.t.roots, id)
	}
	return b.t, nil
}

type builder struct {
	t      *Tree
	schema *parameter.Schema
}

func (b *builder) add(spec *Spec, parent ID) (ID, error) {
	t := b.t
	if err := errors.ValidateName(spec.Name); err != nil {
		return NoID, errors.Wrap(errors.ErrCodeConfig, err, "category %s", b.describe(parent, spec.Name))
	}

	id := ID(len(t.nodes))
	n := Node{
		ID:          id,
		Name:        spec.Name,
		Description: spec.Description,
		Aliases:     slices.Clone(spec.Aliases),
		Structural:  spec.Structural,
		Ignore:      spec.Ignore,
		Parameters:  slices.Clone(spec.Parameters),
		Parent:      parent,
	}
	if n.Description == "" {
		n.Description = n.Name
	}

	for _, p := range n.Parameters {
		if b.schema == nil || !b.schema.Has(p) {
			return NoID, errors.New(errors.ErrCodeUndefinedParameter,
				"category %s uses undefined parameter %q", b.describe(parent, n.Name), p)
		}
	}

	if err := b.claim(n.Name, id, parent, n.Name); err != nil {
		return NoID, err
	}
	for _, alias := range n.Aliases {
		if fold.Equal(alias, n.Name) {
			continue
		}
		if err := b.claim(alias, id, parent, n.Name); err != nil {
			return NoID, err
		}
	}

	ignored := n.Ignore
	var inherited []string
	if parent != NoID {
		ignored = ignored || t.ignored[parent]
		inherited = t.effective[parent]
	}
	t.nodes = append(t.nodes, n)
	t.ignored = append(t.ignored, ignored)
	t.effective = append(t.effective, merge(inherited, n.Parameters))
	if parent != NoID {
		t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	}

	for i := range spec.Children {
		if _, err := b.add(&spec.Children[i], id); err != nil {
			return NoID, err
		}
	}
	return id, nil
}

func (b *builder) claim(token string, id, parent ID, name string) error {
	key := fold.Key(token)
	if key == "" {
		return errors.New(errors.ErrCodeInvalidTree, "category %s has an empty alias", b.describe(parent, name))
	}
	if owner, ok := b.t.index[key]; ok && owner != id {
		return errors.New(errors.ErrCodeDuplicateAlias, "%q is used by both %s and %s",
			token, quotePath(b.t.PathOf(owner)), b.describe(parent, name))
	}
	b.t.index[key] = id
	return nil
}

// describe names a node that may not be in the arena yet.
func (b *builder) describe(parent ID, name string) string {
	if parent == NoID {
		return quotePath([]string{name})
	}
	return quotePath(append(b.t.PathOf(parent), name))
}

// merge returns inherited followed by the members of own not already in it.
func merge(inherited, own []string) []string {
	out := slices.Clip(slices.Clone(inherited))
	for _, p := range own {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// JoinPath formats a category path for display.
func JoinPath(path []string) string {
	return strings.Join(path, " / ")
}

func quotePath(path []string) string {
	return "'" + JoinPath(path) + "'"
}

// Len returns the number of nodes, ignored ones included.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node with the given ID. It panics if id is out of range.
func (t *Tree) Node(id ID) *Node { return &t.nodes[id] }

// Roots returns the top-level nodes in declaration order.
func (t *Tree) Roots() []ID { return slices.Clone(t.roots) }

// Children returns the direct children of id in declaration order.
func (t *Tree) Children(id ID) []ID { return slices.Clone(t.nodes[id].Children) }

// IsIgnored reports whether id or any of its ancestors is ignored.
func (t *Tree) IsIgnored(id ID) bool { return t.ignored[id] }

// Assignable reports whether parts may be placed directly in id.
func (t *Tree) Assignable(id ID) bool {
	return !t.ignored[id] && !t.nodes[id].Structural
}

// Find looks a category up by name or alias, case-insensitively.
// Ignored categories and their descendants are never returned.
func (t *Tree) Find(token string) (ID, bool) {
	id, ok := t.lookup(token)
	if !ok || t.ignored[id] {
		return NoID, false
	}
	return id, true
}

// lookup is Find without the ignore filter.
func (t *Tree) lookup(token string) (ID, bool) {
	id, ok := t.index[fold.Key(token)]
	return id, ok
}

// EffectiveParameters returns the parameters available on id: those
// declared on the root first, then each level down, without duplicates.
// The returned slice must not be modified.
func (t *Tree) EffectiveParameters(id ID) []string {
	return t.effective[id]
}

// ParameterSet returns [Tree.EffectiveParameters] as a set.
func (t *Tree) ParameterSet(id ID) parameter.Set {
	return parameter.NewSet(t.effective[id]...)
}

// PathOf returns the names from the root down to id.
func (t *Tree) PathOf(id ID) []string {
	var path []string
	for ; id != NoID; id = t.nodes[id].Parent {
		path = append(path, t.nodes[id].Name)
	}
	slices.Reverse(path)
	return path
}

// FindPath returns the node whose root-to-node names equal path, compared
// case-insensitively. Aliases are not considered.
func (t *Tree) FindPath(path []string) (ID, bool) {
	if len(path) == 0 {
		return NoID, false
	}
	level := t.roots
	id := NoID
	for _, name := range path {
		next := NoID
		for _, c := range level {
			if fold.Equal(t.nodes[c].Name, name) {
				next = c
				break
			}
		}
		if next == NoID {
			return NoID, false
		}
		id = next
		level = t.nodes[id].Children
	}
	return id, true
}

// Walk yields every node in depth-first declaration order, parents before
// children. Ignored nodes are included.
func (t *Tree) Walk() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for i := range t.nodes {
			if !yield(&t.nodes[i]) {
				return
			}
		}
	}
}
