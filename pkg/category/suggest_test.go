package category

import (
	"slices"
	"testing"
)

func TestSuggest(t *testing.T) {
	tree := testTree(t)
	r := NewResolver(tree)

	got := r.Suggest([]string{"Passive Components", "Capacitor"}, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if want := []string{"Electronics", "Passives", "Capacitors"}; !slices.Equal(got[0].Path, want) {
		t.Errorf("best = %v, want %v", got[0].Path, want)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("suggestions not sorted: %v", got)
		}
	}
	for _, s := range got {
		if !tree.Assignable(s.ID) {
			t.Errorf("suggested %v, not assignable", s.Path)
		}
	}
}

func TestSuggestMatchesAliases(t *testing.T) {
	r := NewResolver(testTree(t))
	got := r.Suggest([]string{"Misc", "Vaccum Tube"}, 10)
	for _, s := range got {
		if s.Path[len(s.Path)-1] == "Tubes" {
			t.Errorf("suggested ignored category %v", s.Path)
		}
	}

	got = r.Suggest([]string{"Chip Resistor, Surface Mount"}, 1)
	if len(got) != 1 || got[0].Path[len(got[0].Path)-1] != "Resistors" {
		t.Errorf("Suggest = %v, want Resistors", got)
	}
}

func TestSuggestEdgeCases(t *testing.T) {
	r := NewResolver(testTree(t))
	if got := r.Suggest(nil, 5); got != nil {
		t.Errorf("Suggest(nil) = %v, want nil", got)
	}
	if got := r.Suggest([]string{"x"}, 0); got != nil {
		t.Errorf("Suggest(n=0) = %v, want nil", got)
	}
	// Capacitors, Resistors, Power, Regulators, Mechanical, Screws
	if got := r.Suggest([]string{"x"}, 100); len(got) != 6 {
		t.Errorf("len = %d, want 6", len(got))
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "abc", 1},
		{"abc", "xyz", 0},
		{"abcd", "abce", 0.75},
		{"µF", "uF", 0.5},
	}
	for _, tt := range tests {
		if got := ratio(tt.a, tt.b); got != tt.want {
			t.Errorf("ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
