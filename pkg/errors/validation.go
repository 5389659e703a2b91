package errors

import (
	"strings"
	"unicode"
)

// reservedPrefix marks metadata keys in taxonomy files (e.g. "_aliases").
const reservedPrefix = "_"

// ValidateName validates a category or parameter name from a taxonomy file.
//
// The rules are intentionally conservative:
//   - No empty or whitespace-only names
//   - No control characters
//   - No leading underscore (reserved for metadata keys)
//   - No "/" (used as the path separator in CLI output and the HTTP API)
//   - Maximum length of 200 characters
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidTree, "name cannot be empty")
	}

	if len(name) > 200 {
		return New(ErrCodeInvalidTree, "name too long (max 200 characters): %q", name[:32]+"...")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTree, "name contains invalid control characters: %q", name)
		}
	}

	if strings.HasPrefix(name, reservedPrefix) {
		return New(ErrCodeInvalidTree, "name %q uses the reserved %q prefix", name, reservedPrefix)
	}

	if strings.Contains(name, "/") {
		return New(ErrCodeInvalidTree, "name %q cannot contain '/'", name)
	}

	return nil
}

// ValidateSearchTerm validates a part search term (SKU or MPN) passed on
// the command line or read from a batch file.
func ValidateSearchTerm(term string) error {
	if strings.TrimSpace(term) == "" {
		return New(ErrCodeInvalidInput, "search term cannot be empty")
	}

	if len(term) > 128 {
		return New(ErrCodeInvalidInput, "search term too long (max 128 characters)")
	}

	for _, r := range term {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "search term contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL checks that rawURL uses one of schemes, or http/https when
// no scheme is given.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if len(schemes) == 0 {
		schemes = []string{"http", "https"}
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes %s", strings.Join(schemes, ", "))
}
