// Package pg bootstraps the PostgreSQL layer of the engine: an
// environment-driven pool configuration, a Connect helper that retries until
// the database is reachable, a health check closure, and error classification
// helpers for pgx errors.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
// Table provisioning lives with the packages that own the tables; see
// record.PGStore.EnsureTable and taskqueue.PGStore.EnsureTable.
package pg
