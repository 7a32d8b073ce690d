package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/handybase/handy/pkg/cron"
	"github.com/handybase/handy/pkg/record"
	"github.com/handybase/handy/pkg/schema"
)

// recordID is the primary key of the single configuration row.
const recordID = int64(1)

// Document keys reserved by the engine.
const (
	keyCronRecords = "cronRecords"
	keyCronKey     = "cronKey"
)

var definition = schema.MustCompose(schema.Definition{
	Table: "config",
	Fields: []schema.Field{
		{Name: "config", Type: schema.TypeText, Logical: schema.LogicalObject},
	},
})

// Definition returns the composed schema of the configuration table, for
// callers provisioning storage.
func Definition() schema.Definition {
	return definition
}

// Registry reads and writes the shared configuration document.
type Registry struct {
	mapper *record.Mapper
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry's logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.logger = log
		}
	}
}

// New creates a Registry backed by the given mapper.
func New(mapper *record.Mapper, opts ...Option) (*Registry, error) {
	if mapper == nil {
		return nil, ErrNilMapper
	}
	r := &Registry{
		mapper: mapper,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Load returns the full configuration document. A missing row yields an
// empty document, not an error, so first use needs no provisioning step.
func (r *Registry) Load(ctx context.Context) (map[string]any, error) {
	inst := record.New(definition, map[string]any{schema.FieldID: recordID})
	if err := r.mapper.Load(ctx, inst); err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	switch doc := inst.Value("config").(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrDecodeDocument, doc)
	}
}

// Update merges the given keys into the document and writes the whole
// document back. A nil value removes its key. Returns the merged document.
func (r *Registry) Update(ctx context.Context, changes map[string]any) (map[string]any, error) {
	doc, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	for k, v := range changes {
		if v == nil {
			delete(doc, k)
			continue
		}
		doc[k] = v
	}

	inst := record.New(definition, map[string]any{
		schema.FieldID: recordID,
		"config":       doc,
	})
	if err := r.mapper.Save(ctx, inst); err != nil {
		return nil, err
	}
	return doc, nil
}

// Value returns one document entry, or nil when absent.
func (r *Registry) Value(ctx context.Context, key string) (any, error) {
	doc, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc[key], nil
}

// CronRecords implements cron.ScheduleStore by decoding the cronRecords
// document entry.
func (r *Registry) CronRecords(ctx context.Context) (map[string]cron.ScheduleRecord, error) {
	raw, err := r.Value(ctx, keyCronRecords)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return map[string]cron.ScheduleRecord{}, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.Join(ErrDecodeDocument, err)
	}
	records := make(map[string]cron.ScheduleRecord)
	if err := json.Unmarshal(encoded, &records); err != nil {
		return nil, errors.Join(ErrDecodeDocument, err)
	}
	return records, nil
}

// SetCronRecords implements cron.ScheduleStore by replacing the cronRecords
// document entry.
func (r *Registry) SetCronRecords(ctx context.Context, records map[string]cron.ScheduleRecord) error {
	_, err := r.Update(ctx, map[string]any{keyCronRecords: records})
	return err
}

// CronKey returns the trigger key guarding the external cron endpoint. A
// missing key is generated and persisted on first access.
func (r *Registry) CronKey(ctx context.Context) (string, error) {
	raw, err := r.Value(ctx, keyCronKey)
	if err != nil {
		return "", err
	}
	if key, ok := raw.(string); ok && key != "" {
		return key, nil
	}
	return r.RotateCronKey(ctx)
}

// RotateCronKey replaces the trigger key with a fresh one and returns it.
// The old key stops working immediately.
func (r *Registry) RotateCronKey(ctx context.Context) (string, error) {
	key := uuid.NewString()
	if _, err := r.Update(ctx, map[string]any{keyCronKey: key}); err != nil {
		return "", err
	}
	r.logger.Info("rotated cron trigger key")
	return key, nil
}
