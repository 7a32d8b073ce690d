package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store on a pgx connection pool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a Postgres-backed queue store.
func NewPGStore(pool *pgxpool.Pool) (*PGStore, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	return &PGStore{pool: pool}, nil
}

// EnsureTable creates the queue table if it does not exist.
func (s *PGStore) EnsureTable(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return errors.Join(ErrQueueFailure, err)
	}
	defer conn.Release()

	const ddl = `CREATE TABLE IF NOT EXISTS taskqueues (
		id BIGINT GENERATED BY DEFAULT AS IDENTITY NOT NULL PRIMARY KEY,
		type VARCHAR(40),
		payload TEXT,
		lockstatus BOOLEAN DEFAULT FALSE
	)`
	if _, err := conn.Exec(ctx, ddl); err != nil {
		return errors.Join(ErrQueueFailure, err)
	}
	if _, err := conn.Exec(ctx, "CREATE INDEX IF NOT EXISTS taskqueues_type_idx ON taskqueues (type)"); err != nil {
		return errors.Join(ErrQueueFailure, err)
	}
	return nil
}

// Enqueue implements Store.
func (s *PGStore) Enqueue(ctx context.Context, typ string, locked bool, payload any) error {
	encoded, err := marshalPayload(payload)
	if err != nil {
		return err
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return errors.Join(ErrQueueFailure, err)
	}
	defer conn.Release()

	const query = "INSERT INTO taskqueues (type, lockstatus, payload) VALUES ($1, $2, $3)"
	if _, err := conn.Exec(ctx, query, typ, locked, string(encoded)); err != nil {
		return errors.Join(ErrQueueFailure, err)
	}
	return nil
}

// Fetch implements Store. The select and the lock flip run as a single UPDATE
// with row locking, so a concurrent Fetch of the same type cannot return the
// same item.
func (s *PGStore) Fetch(ctx context.Context, filter Filter, respectLocks bool) ([]Item, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, errors.Join(ErrQueueFailure, err)
	}
	defer conn.Release()

	var (
		clauses []string
		args    []any
	)
	if filter.Type != "" {
		args = append(args, filter.Type)
		clauses = append(clauses, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.ID != 0 {
		args = append(args, filter.ID)
		clauses = append(clauses, fmt.Sprintf("id = $%d", len(args)))
	}
	if respectLocks {
		clauses = append(clauses, "lockstatus = FALSE")
	}
	if len(clauses) == 0 {
		clauses = append(clauses, "TRUE")
	}

	query := fmt.Sprintf(`UPDATE taskqueues SET lockstatus = TRUE
		WHERE id IN (SELECT id FROM taskqueues WHERE %s FOR UPDATE SKIP LOCKED)
		RETURNING id, type, payload, lockstatus`, strings.Join(clauses, " AND "))

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrQueueFailure, err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item    Item
			payload *string
		)
		if err := rows.Scan(&item.ID, &item.Type, &payload, &item.Locked); err != nil {
			return nil, errors.Join(ErrQueueFailure, err)
		}
		if payload != nil {
			item.Payload = []byte(*payload)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrQueueFailure, err)
	}
	return items, nil
}

// SetLockStatus implements Store.
func (s *PGStore) SetLockStatus(ctx context.Context, item Item, locked bool) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return errors.Join(ErrQueueFailure, err)
	}
	defer conn.Release()

	const query = "UPDATE taskqueues SET lockstatus = $1 WHERE id = $2"
	if _, err := conn.Exec(ctx, query, locked, item.ID); err != nil {
		return errors.Join(ErrQueueFailure, err)
	}
	return nil
}

// Remove implements Store.
func (s *PGStore) Remove(ctx context.Context, item Item) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return errors.Join(ErrQueueFailure, err)
	}
	defer conn.Release()

	const query = "DELETE FROM taskqueues WHERE id = $1"
	if _, err := conn.Exec(ctx, query, item.ID); err != nil {
		return errors.Join(ErrQueueFailure, err)
	}
	return nil
}
