// Package repositories provides the persistence layer for collection records
// and tracked books.
//
// Each repository implements models.Repository-style access for one entity
// and exposes a bulk operation (ImportAll, ReconcileAll) that runs an entire
// pipeline stage inside a single transaction, so a failed stage leaves no
// partial state behind.
package repositories
