// Package aggregates defines domain-facing aggregate contracts.
//
// Contracts avoid persistence and transport details. Each one is a write
// boundary where document workflow invariants are enforced atomically.
package aggregates
