// Package workflow holds the pure rules of the document approval workflow:
// the status transition table, the approval chain evaluator, signature source
// parsing and payload validation. Nothing here touches storage.
package workflow
