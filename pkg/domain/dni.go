// Package domain holds the typed identifier for farmer records.
package domain

import (
	"strings"

	dErrors "plantas/pkg/errors"
)

// DNI is the 8-digit national identity document that uniquely keys a farmer
// record. Invariant: always exactly 8 ASCII digits.
//
// Usage: construct via ParseDNI at trust boundaries; direct casting bypasses
// normalization and must only be done with values read back from the store.
type DNI string

// ParseDNI normalizes and validates a raw identifier: surrounding whitespace
// is trimmed, hyphen and period separators are removed, and the result must
// be exactly 8 ASCII digits.
//
// Both path parsing and body validation go through this function so that a
// path identifier and a payload identifier normalize identically and can be
// compared for equality.
//
// Errors: CodeInvalidDNI carrying the original input and whether the failure
// was wrong length or non-numeric content; no other errors are returned.
func ParseDNI(raw string) (DNI, error) {
	if strings.TrimSpace(raw) == "" {
		return "", dErrors.Newf(dErrors.CodeInvalidDNI, "dni %q: cannot be empty", raw)
	}

	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")

	if len(cleaned) != 8 {
		return "", dErrors.Newf(dErrors.CodeInvalidDNI, "dni %q: must have 8 digits, got %d", raw, len(cleaned))
	}
	for _, c := range []byte(cleaned) {
		if c < '0' || c > '9' {
			return "", dErrors.Newf(dErrors.CodeInvalidDNI, "dni %q: must contain only digits", raw)
		}
	}
	return DNI(cleaned), nil
}

func (d DNI) String() string { return string(d) }
