package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Store adapters return these
// (optionally wrapped) so the service layer can translate them into domain
// errors without depending on store-specific error types.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in the store
// - ErrConflict: unique-key violation (duplicate DNI)
// - ErrUnavailable: backing store temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
