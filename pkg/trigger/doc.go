// Package trigger exposes the cron runner over HTTP for deployments that
// rely on an external pinger instead of an in-process timer. The routes are
// guarded by a rotating key held in the configuration registry:
//
//	GET /cron/{key}        run all due tasks
//	GET /cron/{key}/reset  rotate the key
//
// Every request is answered 200 "done" whether or not the key matched, so
// probing the endpoint reveals nothing about the key.
package trigger
