// Package cron drives at-least-once execution of named recurring jobs.
//
// A job is two linked views of the same name: a registry entry (the run
// function, supplied at process start and held in memory) and a schedule
// record (frequency and last successful run, persisted through a
// ScheduleStore). The Runner is invoked on an external trigger tick, computes
// which names are due, and launches each due job in its own goroutine; it
// does not wait for slow jobs before returning. A job's last-run timestamp
// advances only when its run function returns nil, so failures are retried on
// the next tick.
//
// Two gaps are inherited deliberately: a run function that never returns
// keeps its job effectively running forever (no timeout is enforced), and
// schedule updates are read-modify-write against a shared document, so
// concurrent writers can lose an update.
package cron
