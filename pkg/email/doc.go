// Package email defines the outbound mail contract and its two senders: a
// Postmark-backed client for production and a DevSender that writes messages
// to disk for local work.
//
// The mail queue consumes any Sender; a positive SendBuffer in Config marks
// the provider as rate limited, which switches the queue to sequential
// dispatch with that delay between sends.
package email
