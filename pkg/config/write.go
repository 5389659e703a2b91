package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/partimport/pkg/errors"
)

const fileHeader = `# partimport configuration.
# Every key can be overridden with a PARTIMPORT_ environment variable,
# e.g. PARTIMPORT_IMPORT_WORKERS=16 or PARTIMPORT_SINK_KIND=dryrun.

`

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg *Config) error {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode configuration")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile writes cfg to path, creating parent directories. An existing
// file is only replaced when force is set.
func WriteFile(path string, cfg *Config, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrCodeInvalidInput, "%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, err, "create %s", filepath.Dir(path))
	}
	var buf bytes.Buffer
	if err := Write(&buf, cfg); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeConfig, err, "write %s", path)
	}
	return nil
}
