package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing tour code, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidImport is returned when an import payload is structurally
// malformed (not a JSON array of objects with a tour field). The whole batch
// is rejected; no row-level diagnostics are produced.
var ErrInvalidImport = errors.New("invalid import")

// ErrUnresolvedReferences is returned when an import batch is confirmed while
// at least one row still lacks a company, guide or nationality id.
var ErrUnresolvedReferences = errors.New("unresolved references")
