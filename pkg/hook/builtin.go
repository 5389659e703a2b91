package hook

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/partimport/pkg/part"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Hook{}
)

// Register makes a Go hook available to hooks.yaml under its name.
// It panics if the name is empty or already registered.
func Register(h Hook) {
	registryMu.Lock()
	defer registryMu.Unlock()
	name := h.Name()
	if name == "" {
		panic("hook: Register with empty name")
	}
	if _, dup := registry[name]; dup {
		panic("hook: Register called twice for " + name)
	}
	registry[name] = h
}

// Lookup returns the registered hook with the given name.
func Lookup(name string) (Hook, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	h, ok := registry[name]
	return h, ok
}

// Registered returns the names of all registered hooks, sorted.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

func init() {
	Register(Func("trim-description", trimDescription))
	Register(Func("uppercase-mpn", uppercaseMPN))
	Register(Func("require-mpn", requireMPN))
}

// trimDescription collapses runs of whitespace in the description.
func trimDescription(p *part.Resolved) error {
	p.Description = strings.Join(strings.Fields(p.Description), " ")
	return nil
}

func uppercaseMPN(p *part.Resolved) error {
	p.MPN = strings.ToUpper(p.MPN)
	return nil
}

func requireMPN(p *part.Resolved) error {
	if strings.TrimSpace(p.MPN) == "" {
		return fmt.Errorf("part %s has no manufacturer part number", p.Key())
	}
	return nil
}
