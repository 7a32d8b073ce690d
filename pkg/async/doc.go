// Package async runs functions in their own goroutines and hands back
// futures to await. The mail queue uses it to dispatch independent messages
// concurrently; anything needing fan-out with collected errors can use it the
// same way.
package async
