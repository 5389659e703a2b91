package supplier

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/part"
)

// FileSupplier serves parts from a JSON export: an array of [part.Raw]
// records. Records without a supplier field are attributed to the file's
// supplier. A record may give its price breaks as the supplier prints them
// under "prices", e.g. {"10": "€ 0,0123"}; they are parsed with
// [ParseMoney] into PriceBreaks.
type FileSupplier struct {
	id    ID
	parts []*part.Raw
}

// NewFileSupplier loads path for supplier id.
func NewFileSupplier(id ID, path string) (*FileSupplier, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "supplier %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "supplier %s", id)
	}
	return ParseFileSupplier(id, data)
}

// ParseFileSupplier decodes a JSON export for supplier id.
func ParseFileSupplier(id ID, data []byte) (*FileSupplier, error) {
	var records []exportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "decode %s export", id)
	}
	parts := make([]*part.Raw, len(records))
	for i := range records {
		p := &records[i].Raw
		if p.Supplier == "" {
			p.Supplier = string(id)
		}
		for qty, price := range records[i].Prices {
			d, err := ParseMoney(price)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeConfig, err, "%s export: %s price for %d", id, p.SKU, qty)
			}
			if p.PriceBreaks == nil {
				p.PriceBreaks = make(map[int]decimal.Decimal, len(records[i].Prices))
			}
			p.PriceBreaks[qty] = d
		}
		parts[i] = p
	}
	return &FileSupplier{id: id, parts: parts}, nil
}

type exportRecord struct {
	part.Raw
	Prices map[int]string `json:"prices,omitempty"`
}

// ID returns the supplier ID.
func (s *FileSupplier) ID() ID { return s.id }

// Search returns copies of the records whose SKU or MPN equals term, or
// whose MPN starts with it.
func (s *FileSupplier) Search(ctx context.Context, term string) ([]*part.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := errors.ValidateSearchTerm(term); err != nil {
		return nil, err
	}
	term = strings.ToUpper(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}
	var out []*part.Raw
	for _, p := range s.parts {
		sku, mpn := strings.ToUpper(p.SKU), strings.ToUpper(p.MPN)
		if sku == term || strings.HasPrefix(mpn, term) {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

// Len returns the number of records.
func (s *FileSupplier) Len() int { return len(s.parts) }
