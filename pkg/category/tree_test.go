package category

import (
	"slices"
	"testing"

	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/parameter"
)

func testSchema(t *testing.T) *parameter.Schema {
	t.Helper()
	s, err := parameter.BuildSchema([]parameter.Spec{
		{Name: "Package"},
		{Name: "Capacitance", Unit: "F"},
		{Name: "Voltage Rating", Unit: "V"},
		{Name: "Resistance", Unit: "Ω"},
		{Name: "Tolerance"},
		{Name: "Input Voltage", Unit: "V", Aliases: []string{"Voltage - Input"}},
	})
	if err != nil {
		t.Fatalf("BuildSchema: %v", err)
	}
	return s
}

// testSpecs is
//
//	Electronics (structural, Package)
//	  Passives (structural, Tolerance)
//	    Capacitors [Ceramic Capacitors, MLCC, Chip Capacitors] (Capacitance, Voltage Rating)
//	    Resistors [Chip Resistor - Surface Mount, Surface Mount Passives] (Resistance)
//	  Power [B-alias] (Input Voltage)
//	    Regulators
//	  Obsolete [Legacy Parts, Legacy Electronics] (ignored)
//	    Tubes [Vacuum Tubes]
//	Mechanical
//	  Screws
func testSpecs() []Spec {
	return []Spec{
		{
			Name:       "Electronics",
			Structural: true,
			Parameters: []string{"Package"},
			Children: []Spec{
				{
					Name:       "Passives",
					Structural: true,
					Parameters: []string{"Tolerance"},
					Children: []Spec{
						{Name: "Capacitors", Aliases: []string{"Ceramic Capacitors", "MLCC", "Chip Capacitors"}, Parameters: []string{"Capacitance", "Voltage Rating"}},
						{Name: "Resistors", Aliases: []string{"Chip Resistor - Surface Mount", "Surface Mount Passives"}, Parameters: []string{"Resistance"}},
					},
				},
				{
					Name:       "Power",
					Aliases:    []string{"B-alias"},
					Parameters: []string{"Input Voltage"},
					Children:   []Spec{{Name: "Regulators"}},
				},
				{
					Name:    "Obsolete",
					Aliases: []string{"Legacy Parts", "Legacy Electronics"},
					Ignore:  true,
					Children: []Spec{
						{Name: "Tubes", Aliases: []string{"Vacuum Tubes"}},
					},
				},
			},
		},
		{
			Name:     "Mechanical",
			Children: []Spec{{Name: "Screws"}},
		},
	}
}

func testTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := Build(testSpecs(), testSchema(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree
}

func mustFind(t *testing.T, tree *Tree, token string) ID {
	t.Helper()
	id, ok := tree.Find(token)
	if !ok {
		t.Fatalf("Find(%q) not found", token)
	}
	return id
}

func TestBuildRejectsCollisions(t *testing.T) {
	tests := []struct {
		name  string
		specs []Spec
		code  errors.Code
	}{
		{
			name:  "duplicate root names",
			specs: []Spec{{Name: "Capacitors"}, {Name: "capacitors"}},
			code:  errors.ErrCodeDuplicateAlias,
		},
		{
			name: "sibling collision",
			specs: []Spec{{Name: "Passives", Children: []Spec{
				{Name: "Capacitors"}, {Name: "CAPACITORS"},
			}}},
			code: errors.ErrCodeDuplicateAlias,
		},
		{
			name: "alias equals distant name",
			specs: []Spec{
				{Name: "Passives", Children: []Spec{{Name: "Capacitors"}}},
				{Name: "Other", Aliases: []string{"capacitors"}},
			},
			code: errors.ErrCodeDuplicateAlias,
		},
		{
			name: "shared alias",
			specs: []Spec{
				{Name: "A", Aliases: []string{"Shared"}},
				{Name: "B", Aliases: []string{"shared"}},
			},
			code: errors.ErrCodeDuplicateAlias,
		},
		{
			name: "alias collides inside ignored subtree",
			specs: []Spec{
				{Name: "Obsolete", Ignore: true, Children: []Spec{{Name: "Tubes"}}},
				{Name: "Valves", Aliases: []string{"Tubes"}},
			},
			code: errors.ErrCodeDuplicateAlias,
		},
		{
			name: "compatibility characters fold together",
			specs: []Spec{
				{Name: "µC"},
				{Name: "Microcontrollers", Aliases: []string{"μC"}},
			},
			code: errors.ErrCodeDuplicateAlias,
		},
		{
			name:  "undefined parameter",
			specs: []Spec{{Name: "Capacitors", Parameters: []string{"Colour"}}},
			code:  errors.ErrCodeUndefinedParameter,
		},
		{
			name:  "parameter referenced by alias",
			specs: []Spec{{Name: "Power", Parameters: []string{"Voltage - Input"}}},
			code:  errors.ErrCodeUndefinedParameter,
		},
		{
			name:  "empty name",
			specs: []Spec{{Name: ""}},
			code:  errors.ErrCodeConfig,
		},
		{
			name:  "empty alias",
			specs: []Spec{{Name: "A", Aliases: []string{" "}}},
			code:  errors.ErrCodeInvalidTree,
		},
	}

	schema := testSchema(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.specs, schema)
			if err == nil {
				t.Fatal("Build succeeded, want error")
			}
			if !errors.IsConfig(err) {
				t.Errorf("IsConfig(%v) = false, want true", err)
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestBuildOwnAliasEqualToName(t *testing.T) {
	tree, err := Build([]Spec{{Name: "Diodes", Aliases: []string{"DIODES", "Rectifiers", "rectifiers"}}}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tree.Len() != 1 {
		t.Errorf("Len = %d, want 1", tree.Len())
	}
}

func TestNamesAndAliasesUnique(t *testing.T) {
	tree := testTree(t)
	seen := map[string]ID{}
	for n := range tree.Walk() {
		for _, token := range append([]string{n.Name}, n.Aliases...) {
			id, ok := tree.lookup(token)
			if !ok || id != n.ID {
				t.Errorf("lookup(%q) = %d, %v; want %d", token, id, ok, n.ID)
			}
			if prev, dup := seen[token]; dup && prev != n.ID {
				t.Errorf("%q claimed by %d and %d", token, prev, n.ID)
			}
			seen[token] = n.ID
		}
	}
}

func TestFind(t *testing.T) {
	tree := testTree(t)

	tests := []struct {
		token string
		want  []string
	}{
		{"Capacitors", []string{"Electronics", "Passives", "Capacitors"}},
		{"mlcc", []string{"Electronics", "Passives", "Capacitors"}},
		{"  CERAMIC capacitors ", []string{"Electronics", "Passives", "Capacitors"}},
		{"b-alias", []string{"Electronics", "Power"}},
		{"Screws", []string{"Mechanical", "Screws"}},
	}
	for _, tt := range tests {
		id, ok := tree.Find(tt.token)
		if !ok {
			t.Errorf("Find(%q) not found", tt.token)
			continue
		}
		if got := tree.PathOf(id); !slices.Equal(got, tt.want) {
			t.Errorf("PathOf(Find(%q)) = %v, want %v", tt.token, got, tt.want)
		}
	}

	for _, token := range []string{"Obsolete", "Tubes", "vacuum tubes", "Ceramic", ""} {
		if id, ok := tree.Find(token); ok {
			t.Errorf("Find(%q) = %d, want not found", token, id)
		}
	}
}

func TestPathOfFindRoundTrip(t *testing.T) {
	tree := testTree(t)
	for n := range tree.Walk() {
		if tree.IsIgnored(n.ID) {
			continue
		}
		want := tree.PathOf(n.ID)
		for _, token := range append([]string{n.Name}, n.Aliases...) {
			id, ok := tree.Find(token)
			if !ok {
				t.Errorf("Find(%q) not found", token)
				continue
			}
			if got := tree.PathOf(id); !slices.Equal(got, want) {
				t.Errorf("PathOf(Find(%q)) = %v, want %v", token, got, want)
			}
		}
	}
}

func TestEffectiveParametersInheritance(t *testing.T) {
	tree := testTree(t)

	for n := range tree.Walk() {
		eff := tree.EffectiveParameters(n.ID)
		for a := n.ID; a != NoID; a = tree.Node(a).Parent {
			for _, p := range tree.Node(a).Parameters {
				if !slices.Contains(eff, p) {
					t.Errorf("%v lacks %q inherited from %q", tree.PathOf(n.ID), p, tree.Node(a).Name)
				}
			}
		}
	}

	caps := mustFind(t, tree, "Capacitors")
	want := []string{"Package", "Tolerance", "Capacitance", "Voltage Rating"}
	if got := tree.EffectiveParameters(caps); !slices.Equal(got, want) {
		t.Errorf("EffectiveParameters(Capacitors) = %v, want %v", got, want)
	}

	reg := mustFind(t, tree, "Regulators")
	set := tree.ParameterSet(reg)
	if !set.Has("Input Voltage") || !set.Has("Package") || set.Has("Tolerance") {
		t.Errorf("ParameterSet(Regulators) = %v", set.Sorted())
	}

	screws := mustFind(t, tree, "Screws")
	if got := tree.EffectiveParameters(screws); len(got) != 0 {
		t.Errorf("EffectiveParameters(Screws) = %v, want empty", got)
	}
}

func TestEffectiveParametersNoDuplicates(t *testing.T) {
	tree, err := Build([]Spec{{
		Name:       "Passives",
		Parameters: []string{"Package"},
		Children:   []Spec{{Name: "Capacitors", Parameters: []string{"Package", "Capacitance"}}},
	}}, testSchema(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := tree.EffectiveParameters(mustFind(t, tree, "Capacitors"))
	if want := []string{"Package", "Capacitance"}; !slices.Equal(got, want) {
		t.Errorf("EffectiveParameters = %v, want %v", got, want)
	}
}

func TestTreeStructure(t *testing.T) {
	tree := testTree(t)

	if tree.Len() != 10 {
		t.Errorf("Len = %d, want 10", tree.Len())
	}
	roots := tree.Roots()
	if len(roots) != 2 || tree.Node(roots[0]).Name != "Electronics" || tree.Node(roots[1]).Name != "Mechanical" {
		t.Errorf("Roots = %v", roots)
	}
	if !tree.Node(roots[0]).IsRoot() {
		t.Error("Electronics is not a root")
	}

	var names []string
	for _, c := range tree.Children(roots[0]) {
		names = append(names, tree.Node(c).Name)
	}
	if want := []string{"Passives", "Power", "Obsolete"}; !slices.Equal(names, want) {
		t.Errorf("Children(Electronics) = %v, want %v", names, want)
	}

	tubes, ok := tree.lookup("Tubes")
	if !ok {
		t.Fatal("Tubes not indexed")
	}
	if !tree.IsIgnored(tubes) {
		t.Error("Tubes not ignored through its parent")
	}
	if tree.Node(tubes).Ignore {
		t.Error("Tubes has its own Ignore flag set")
	}

	if tree.Assignable(roots[0]) {
		t.Error("structural Electronics is assignable")
	}
	if !tree.Assignable(mustFind(t, tree, "Capacitors")) {
		t.Error("Capacitors is not assignable")
	}
	if got := tree.Node(roots[1]).Description; got != "Mechanical" {
		t.Errorf("Description = %q, want name", got)
	}
}

func TestFindPath(t *testing.T) {
	tree := testTree(t)

	id, ok := tree.FindPath([]string{"electronics", "Passives", "capacitors"})
	if !ok || tree.Node(id).Name != "Capacitors" {
		t.Errorf("FindPath = %d, %v", id, ok)
	}
	for _, path := range [][]string{
		nil,
		{"Passives"},
		{"Electronics", "MLCC"},
		{"Electronics", "Passives", "Capacitors", "X7R"},
	} {
		if _, ok := tree.FindPath(path); ok {
			t.Errorf("FindPath(%v) found, want not found", path)
		}
	}
}

func TestWalkStops(t *testing.T) {
	tree := testTree(t)
	n := 0
	for range tree.Walk() {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("visited %d nodes, want 3", n)
	}
}
