// Package schema defines the field-level description of a persisted entity kind
// and the composition rules that every kind shares.
//
// A caller supplies a Definition listing its own fields; Compose appends the
// base fields (primary key, timestamps, soft-delete flag) that all entity kinds
// carry, without ever overwriting a caller-defined field of the same name. The
// composed Definition is the single source of truth for the record mapper: it
// drives value serialization, load-time coercion, upsert key selection and
// table DDL generation.
//
// Composition is a pure function: given the same input it always produces the
// same canonical Definition, and composing an already-composed Definition is a
// no-op.
package schema
