package domain

import "errors"

// Deletion and assessment failure kinds. Outcomes wrap one of these so
// callers can branch with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrBlocked           = errors.New("blocked by safety policy")
	ErrBackupFailed      = errors.New("backup failed")
	ErrDisposalFailed    = errors.New("disposal failed")
	ErrProbeInconclusive = errors.New("in-use probe inconclusive")

	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownSafety   = errors.New("unknown safety level")
)
