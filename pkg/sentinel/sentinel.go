package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// so services can translate them into domain errors without leaking driver
// details.
//
// These represent factual states about records, not validation failures:
//   - ErrNotFound: record does not exist in the store
//   - ErrConflict: a uniqueness rule rejected the write (duplicate pending
//     pair, duplicate rater, feedback already set)
//   - ErrInvalidState: record is in the wrong state for the requested
//     transition (status no longer Pending, request not Accepted)
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)
