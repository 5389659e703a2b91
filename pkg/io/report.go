package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/pipeline"
)

// WriteReport encodes report as indented JSON.
func WriteReport(w io.Writer, report *pipeline.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode report")
	}
	return nil
}

// ExportReport writes report to path.
func ExportReport(report *pipeline.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", path)
	}
	if err := WriteReport(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
