// Package registry stores process-wide configuration as a single JSON
// document in one database row. The document carries the cron schedule
// records and the cron trigger key, and is shared by every process of the
// deployment.
//
// Updates are read-modify-write over the whole document. Concurrent writers
// are not arbitrated; the last write wins and can drop another writer's
// changes. Callers that need stronger guarantees must serialize their own
// updates.
package registry
