package record

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/handybase/handy/pkg/schema"
)

// PGStore implements Store on a pgx connection pool. Every operation acquires
// a connection from the pool and releases it on all exit paths.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a Postgres-backed store.
func NewPGStore(pool *pgxpool.Pool) (*PGStore, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	return &PGStore{pool: pool}, nil
}

// Upsert implements Store. The row is written with a single
// INSERT ... ON CONFLICT ... DO UPDATE statement; non-key fields go into the
// update clause, key fields identify the row. Nil values of auto-generated
// fields are omitted so the store assigns them.
func (s *PGStore) Upsert(ctx context.Context, def schema.Definition, values map[string]any, keySet []string) (int64, error) {
	pk := def.PrimaryKey()
	if pk == nil {
		return 0, ErrNoPrimaryKey
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, errors.Join(ErrStoreFailure, err)
	}
	defer conn.Release()

	var (
		cols         []string
		placeholders []string
		args         []any
	)
	for _, f := range def.Fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		if f.AutoGenerated && v == nil {
			continue
		}
		cols = append(cols, quoteIdent(f.Name))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, v)
	}

	keyed := make(map[string]bool, len(keySet))
	for _, k := range keySet {
		keyed[k] = true
	}

	var updates []string
	for _, f := range def.Fields {
		if keyed[f.Name] {
			continue
		}
		if _, ok := values[f.Name]; !ok {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", quoteIdent(f.Name), quoteIdent(f.Name)))
	}

	target := conflictTarget(def, values, pk)

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(def.Table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if len(updates) > 0 {
		fmt.Fprintf(&sb, " ON CONFLICT (%s) DO UPDATE SET %s", quoteIdent(target), strings.Join(updates, ", "))
	} else {
		fmt.Fprintf(&sb, " ON CONFLICT (%s) DO NOTHING", quoteIdent(target))
	}

	if pk.AutoGenerated {
		fmt.Fprintf(&sb, " RETURNING %s", quoteIdent(pk.Name))
		var id int64
		if err := conn.QueryRow(ctx, sb.String(), args...).Scan(&id); err != nil {
			return 0, errors.Join(ErrStoreFailure, err)
		}
		return id, nil
	}

	if _, err := conn.Exec(ctx, sb.String(), args...); err != nil {
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return 0, nil
}

// conflictTarget picks the column the upsert conflicts on: the primary key
// when the caller supplied one, otherwise the first unique column holding a
// value, falling back to the primary key.
func conflictTarget(def schema.Definition, values map[string]any, pk *schema.Field) string {
	if v, ok := values[pk.Name]; ok && v != nil {
		return pk.Name
	}
	for _, f := range def.Fields {
		if !f.Unique {
			continue
		}
		if v, ok := values[f.Name]; ok && v != nil {
			return f.Name
		}
	}
	return pk.Name
}

// GetBy implements Store.
func (s *PGStore) GetBy(ctx context.Context, def schema.Definition, field string, value any) (map[string]any, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	defer conn.Release()

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1", quoteIdent(def.Table), quoteIdent(field))
	rows, err := conn.Query(ctx, query, value)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}
		return nil, ErrNotFound
	}
	row, err := rowToMap(rows)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return row, nil
}

// Select implements Store.
func (s *PGStore) Select(ctx context.Context, def schema.Definition, constraints []Constraint) ([]map[string]any, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	defer conn.Release()

	var (
		clauses []string
		args    []any
	)
	for _, c := range constraints {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", quoteIdent(c.Field), len(args)+1))
		args = append(args, c.Value)
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s",
		quoteIdent(def.Table), strings.Join(clauses, " AND "))
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		row, err := rowToMap(rows)
		if err != nil {
			return nil, errors.Join(ErrStoreFailure, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return out, nil
}

// Delete implements Store.
func (s *PGStore) Delete(ctx context.Context, def schema.Definition, id any) error {
	pk := def.PrimaryKey()
	if pk == nil {
		return ErrNoPrimaryKey
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	defer conn.Release()

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", quoteIdent(def.Table), quoteIdent(pk.Name))
	if _, err := conn.Exec(ctx, query, id); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

// EnsureTable creates the table for a composed definition if it does not
// exist, including unique constraints and secondary indexes. The DDL is
// derived entirely from the definition; there is no separate migration file
// per entity kind.
func (s *PGStore) EnsureTable(ctx context.Context, def schema.Definition) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	defer conn.Release()

	var cols []string
	for _, f := range def.Fields {
		var col strings.Builder
		col.WriteString(quoteIdent(f.Name))
		col.WriteString(" ")
		col.WriteString(f.Type)
		if f.AutoGenerated {
			col.WriteString(" GENERATED BY DEFAULT AS IDENTITY")
		}
		if f.NotNull {
			col.WriteString(" NOT NULL")
		}
		if f.Default != nil {
			col.WriteString(" DEFAULT ")
			col.WriteString(defaultLiteral(f.Default))
		}
		if f.PrimaryKey {
			col.WriteString(" PRIMARY KEY")
		}
		if f.Unique {
			col.WriteString(" UNIQUE")
		}
		cols = append(cols, col.String())
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(def.Table), strings.Join(cols, ", "))
	if _, err := conn.Exec(ctx, ddl); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}

	for _, f := range def.Fields {
		if !f.Indexed || f.Unique || f.PrimaryKey {
			continue
		}
		idx := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			quoteIdent(def.Table+"_"+f.Name+"_idx"), quoteIdent(def.Table), quoteIdent(f.Name))
		if _, err := conn.Exec(ctx, idx); err != nil {
			return errors.Join(ErrStoreFailure, err)
		}
	}
	return nil
}

// defaultLiteral renders a field default for DDL. The CURRENT_TIMESTAMP
// keyword passes through unquoted; other strings are quoted literals.
func defaultLiteral(v any) string {
	switch tv := v.(type) {
	case string:
		if strings.EqualFold(tv, "CURRENT_TIMESTAMP") {
			return "CURRENT_TIMESTAMP"
		}
		return "'" + strings.ReplaceAll(tv, "'", "''") + "'"
	case bool:
		if tv {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", tv)
	}
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func rowToMap(rows pgx.Rows) (map[string]any, error) {
	vals, err := rows.Values()
	if err != nil {
		return nil, err
	}
	fields := rows.FieldDescriptions()
	row := make(map[string]any, len(fields))
	for i, fd := range fields {
		row[fd.Name] = vals[i]
	}
	return row, nil
}
