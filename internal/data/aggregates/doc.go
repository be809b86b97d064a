// Package aggregates implements the document workflow on top of the table repos.
//
// Each workflow write runs in exactly one transaction opened by runWrite: the
// document row is locked first, the approval chain is re-read under that lock
// and every status change goes through CASGuard.
package aggregates
