// Package mailqueue persists outbound email in the task queue and drains it
// on a schedule. Producers call Enqueue anywhere in the application; a single
// consumer per process drains the "mail" queue type, usually as a cron task.
//
// Dispatch mode follows the provider. A provider without rate limits gets
// concurrent dispatch, one goroutine per message. A rate-limited provider is
// marked by a positive buffer and gets strictly sequential dispatch with the
// buffer slept between send attempts.
//
// Delivery is at-least-once: a sent item is removed, a failed item is
// unlocked for the next drain. A crash between send and remove redelivers
// the message.
package mailqueue
