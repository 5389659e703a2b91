// Package supplier defines the supplier abstraction and the registry the
// importer searches through.
//
// The network clients for the individual supplier APIs live outside this
// repository; anything that turns a search term into [part.Raw] records can
// be registered. [FileSupplier] serves exported JSON records and is what the
// CLI uses out of the box. [Cached] adds a [cache.Cache] in front of any
// supplier.
package supplier

import (
	"context"
	"slices"
	"strings"

	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/part"
)

// ID identifies a supplier.
type ID string

const (
	DigiKey  ID = "digikey"
	LCSC     ID = "lcsc"
	Mouser   ID = "mouser"
	Reichelt ID = "reichelt"
	TME      ID = "tme"
)

// IDs lists the known suppliers in display order.
var IDs = []ID{DigiKey, LCSC, Mouser, Reichelt, TME}

// ParseID converts a user-supplied name to an ID, case-insensitively.
func ParseID(s string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(IDs, id) {
		return "", errors.New(errors.ErrCodeInvalidSupplier, "unknown supplier %q", s)
	}
	return id, nil
}

// Supplier searches one supplier's catalog.
type Supplier interface {
	ID() ID
	// Search returns every part matching term, usually a supplier SKU or a
	// manufacturer part number. No match is an empty result, not an error.
	Search(ctx context.Context, term string) ([]*part.Raw, error)
}

// Registry holds the configured suppliers.
type Registry struct {
	byID  map[ID]Supplier
	order []ID
}

// NewRegistry creates a registry. Later suppliers replace earlier ones with
// the same ID.
func NewRegistry(suppliers ...Supplier) *Registry {
	r := &Registry{byID: make(map[ID]Supplier)}
	for _, s := range suppliers {
		r.Add(s)
	}
	return r
}

// Add registers s.
func (r *Registry) Add(s Supplier) {
	if _, ok := r.byID[s.ID()]; !ok {
		r.order = append(r.order, s.ID())
	}
	r.byID[s.ID()] = s
}

// Get returns the supplier with the given ID.
func (r *Registry) Get(id ID) (Supplier, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// IDs returns the registered supplier IDs in registration order.
func (r *Registry) IDs() []ID { return slices.Clone(r.order) }

// Find searches supplier id for term and picks a single part: the only
// result, or the one whose SKU or MPN equals term. It fails with
// ErrCodeNotFound when nothing matches and ErrCodeInvalidInput when the
// match is ambiguous.
func (r *Registry) Find(ctx context.Context, id ID, term string) (*part.Raw, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidSupplier, "supplier %q is not configured", id)
	}
	results, err := s.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	return Pick(results, term)
}

// FindAny tries every registered supplier in registration order and
// returns the first part found. Only ErrCodeNotFound moves on to the next
// supplier; any other error is returned as is.
func (r *Registry) FindAny(ctx context.Context, term string) (*part.Raw, error) {
	for _, id := range r.order {
		p, err := r.Find(ctx, id, term)
		if errors.Is(err, errors.ErrCodeNotFound) {
			continue
		}
		return p, err
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no supplier has %q", term)
}

// Pick selects the part a search term refers to among results.
func Pick(results []*part.Raw, term string) (*part.Raw, error) {
	switch len(results) {
	case 0:
		return nil, errors.New(errors.ErrCodeNotFound, "no results for %q", term)
	case 1:
		return results[0], nil
	}
	var exact []*part.Raw
	for _, p := range results {
		if strings.EqualFold(p.SKU, term) || strings.EqualFold(p.MPN, term) {
			exact = append(exact, p)
		}
	}
	if len(exact) == 1 {
		return exact[0], nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "%d results for %q, none unambiguous", len(results), term)
}
