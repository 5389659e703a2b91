// Package part defines the records that flow through an import: the raw
// supplier record, the resolved record handed to a sink, and the outcome of
// importing one part.
package part

import (
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/matzehuels/partimport/pkg/units"
)

// Raw is a part as reported by a supplier.
type Raw struct {
	Supplier          string                  `json:"supplier"`
	SKU               string                  `json:"sku"`
	MPN               string                  `json:"mpn"`
	Manufacturer      string                  `json:"manufacturer"`
	Description       string                  `json:"description,omitempty"`
	SupplierLink      string                  `json:"supplier_link,omitempty"`
	ManufacturerLink  string                  `json:"manufacturer_link,omitempty"`
	ImageURL          string                  `json:"image_url,omitempty"`
	DatasheetURL      string                  `json:"datasheet_url,omitempty"`
	Packaging         string                  `json:"packaging,omitempty"`
	QuantityAvailable int                     `json:"quantity_available,omitempty"`
	CategoryPath      []string                `json:"category_path"`
	Parameters        map[string]string       `json:"parameters,omitempty"`
	ParameterOrder    []string                `json:"parameter_order,omitempty"`
	PriceBreaks       map[int]decimal.Decimal `json:"price_breaks,omitempty"`
	Currency          string                  `json:"currency,omitempty"`
}

// Key identifies the part for logs and sinks.
func (r *Raw) Key() string {
	return r.Supplier + ":" + r.SKU
}

// OrderedParameters returns the raw parameter names in supplier order,
// followed by any names missing from ParameterOrder in lexical order.
func (r *Raw) OrderedParameters() []string {
	out := make([]string, 0, len(r.Parameters))
	seen := make(map[string]bool, len(r.Parameters))
	for _, name := range r.ParameterOrder {
		if _, ok := r.Parameters[name]; ok && !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	for _, name := range slices.Sorted(maps.Keys(r.Parameters)) {
		if !seen[name] {
			out = append(out, name)
		}
	}
	return out
}

// Resolved is a part mapped onto the user's taxonomy and parameter schema.
//
// Hooks mutate a Resolved in place; see [Resolved.Clone].
type Resolved struct {
	ImportID uuid.UUID `json:"import_id"`

	Supplier          string                  `json:"supplier"`
	SKU               string                  `json:"sku"`
	MPN               string                  `json:"mpn"`
	Manufacturer      string                  `json:"manufacturer"`
	Description       string                  `json:"description,omitempty"`
	SupplierLink      string                  `json:"supplier_link,omitempty"`
	ManufacturerLink  string                  `json:"manufacturer_link,omitempty"`
	ImageURL          string                  `json:"image_url,omitempty"`
	DatasheetURL      string                  `json:"datasheet_url,omitempty"`
	Packaging         string                  `json:"packaging,omitempty"`
	QuantityAvailable int                     `json:"quantity_available,omitempty"`
	PriceBreaks       map[int]decimal.Decimal `json:"price_breaks,omitempty"`
	Currency          string                  `json:"currency,omitempty"`

	CategoryPath []string               `json:"category_path"`
	Parameters   map[string]units.Value `json:"parameters"`
	// Unassigned lists parameters of the category that no supplier value
	// was mapped to.
	Unassigned []string      `json:"unassigned,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
	HookErrors []HookFailure `json:"hook_errors,omitempty"`
}

// NewResolved copies the identifying fields of raw into a new record with
// an empty parameter map.
func NewResolved(id uuid.UUID, raw *Raw) *Resolved {
	return &Resolved{
		ImportID:          id,
		Supplier:          raw.Supplier,
		SKU:               raw.SKU,
		MPN:               raw.MPN,
		Manufacturer:      raw.Manufacturer,
		Description:       raw.Description,
		SupplierLink:      raw.SupplierLink,
		ManufacturerLink:  raw.ManufacturerLink,
		ImageURL:          raw.ImageURL,
		DatasheetURL:      raw.DatasheetURL,
		Packaging:         raw.Packaging,
		QuantityAvailable: raw.QuantityAvailable,
		PriceBreaks:       maps.Clone(raw.PriceBreaks),
		Currency:          raw.Currency,
		Parameters:        make(map[string]units.Value),
	}
}

// Key identifies the part for logs and sinks.
func (p *Resolved) Key() string {
	return p.Supplier + ":" + p.SKU
}

// Warn records a warning on the part.
func (p *Resolved) Warn(msg string) {
	p.Warnings = append(p.Warnings, msg)
}

// Clone returns a deep copy of p. Mutating the copy never affects p.
func (p *Resolved) Clone() *Resolved {
	c := *p
	c.PriceBreaks = maps.Clone(p.PriceBreaks)
	c.CategoryPath = slices.Clone(p.CategoryPath)
	c.Parameters = maps.Clone(p.Parameters)
	c.Unassigned = slices.Clone(p.Unassigned)
	c.Warnings = slices.Clone(p.Warnings)
	c.HookErrors = slices.Clone(p.HookErrors)
	return &c
}

// HookFailure records a hook that failed on a part.
type HookFailure struct {
	Hook  string `json:"hook"`
	Error string `json:"error"`
	Panic bool   `json:"panic,omitempty"`
}
