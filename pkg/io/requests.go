package io

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	perrors "github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/pipeline"
	"github.com/matzehuels/partimport/pkg/supplier"
)

const (
	columnTerm     = "search_term"
	columnSupplier = "supplier"
	columnQuantity = "quantity"
)

// ReadRequests decodes CSV requests from r using comma as the separator.
func ReadRequests(r io.Reader) ([]pipeline.Request, error) {
	return readRequests(r, ',')
}

func readRequests(r io.Reader, comma rune) ([]pipeline.Request, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read header")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := cols[columnTerm]; !ok {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "missing %s column", columnTerm)
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var reqs []pipeline.Request
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read requests")
		}
		line, _ := cr.FieldPos(0)

		req := pipeline.Request{Term: field(rec, columnTerm)}
		if req.Term == "" {
			continue
		}
		if s := field(rec, columnSupplier); s != "" {
			id, err := supplier.ParseID(s)
			if err != nil {
				return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "line %d", line)
			}
			req.Supplier = id
		}
		if q := field(rec, columnQuantity); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n < 0 {
				return nil, perrors.New(perrors.ErrCodeInvalidInput, "line %d: invalid quantity %q", line, q)
			}
			req.Quantity = n
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
