package io

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/part"
	"github.com/matzehuels/partimport/pkg/pipeline"
)

// Batch is the content of a batch file. Exactly one field is set.
type Batch struct {
	Requests []pipeline.Request
	Parts    []*part.Raw
}

// Len returns the number of entries.
func (b *Batch) Len() int { return len(b.Requests) + len(b.Parts) }

// OpenBatch reads the batch file at path.
func OpenBatch(path string) (*Batch, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open batch")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open batch")
	}
	defer f.Close()

	b := &Batch{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		b.Requests, err = readRequests(f, ',')
	case ".tsv":
		b.Requests, err = readRequests(f, '\t')
	case ".json", ".jsonl":
		b.Parts, err = ReadParts(f)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported batch format %q (want .csv, .tsv, .json or .jsonl)", ext)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
