package domain

import "errors"

// Probing failures
var (
	ErrEmptyCandidateSet = errors.New("empty candidate set")
	ErrAllUnreachable    = errors.New("all candidates unreachable")
)

// Domain-level failures
var (
	ErrNoReachableServer = errors.New("no reachable directory server")
	ErrEnumerationFailed = errors.New("host enumeration failed")
)

// Share-level failures
var (
	ErrAccessDenied = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
)

// Run-fatal configuration failures
var (
	ErrNoDomains     = errors.New("no domains configured")
	ErrInvalidConfig = errors.New("invalid configuration")
)
