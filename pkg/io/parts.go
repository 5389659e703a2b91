package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"

	perrors "github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/part"
)

// ReadParts decodes raw records from r: a JSON array, or one JSON object
// per line.
func ReadParts(r io.Reader) ([]*part.Raw, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read parts")
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var raws []*part.Raw
		if err := dec.Decode(&raws); err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "decode parts")
		}
		return raws, nil
	}

	var raws []*part.Raw
	for {
		raw := &part.Raw{}
		err := dec.Decode(raw)
		if errors.Is(err, io.EOF) {
			return raws, nil
		}
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "decode part %d", len(raws)+1)
		}
		raws = append(raws, raw)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsRune([]byte(" \t\r\n"), rune(b)) {
			return b, br.UnreadByte()
		}
	}
}
