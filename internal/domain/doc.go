// Package domain defines the core types for share permission reconnaissance.
//
// The types follow the pipeline: a Domain yields CandidateServers, one of which
// becomes the selected server; the server yields host names; every host is
// probed into a HostProbeOutcome plus zero or more PermissionRecords.
//
// # Design Principles
//
// - Immutable value objects; every entity lives for a single run
// - No network or storage dependencies
// - Failures are classified with sentinel errors (see errors.go)
package domain
