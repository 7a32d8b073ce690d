// Package record maps entity instances onto rows of a relational store without
// per-entity query code.
//
// An Instance pairs a composed schema.Definition with a mutable field-value
// map. The Mapper performs the four generic operations every entity kind
// needs: upsert-style Save, identifier-resolved Load with type coercion,
// predicate Find, and hard RemoveRecord. All persistence runs through the
// small Store interface, so the mapper itself stays storage-agnostic: PGStore
// backs it with a pgx connection pool, MemoryStore backs it in tests.
//
// Load and Find are deliberately asymmetric. Load hydrates a single instance
// and applies logical-type coercion (booleans, JSON-encoded arrays and
// objects); Find is the bulk read path and returns raw rows, leaving
// re-hydration to the caller.
package record
