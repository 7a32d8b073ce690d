package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
)

// Item is one unit of deferred work.
type Item struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Payload []byte `json:"payload"`
	Locked  bool   `json:"lockstatus"`
}

// Filter selects queue items by equality. Zero values leave the dimension
// unconstrained.
type Filter struct {
	Type string
	ID   int64
}

// Store is the queue persistence contract. Fetch and its lock flip are one
// unit with respect to any concurrent Fetch of the same type: an item is
// either returned locked to exactly one caller or left for the next drain.
type Store interface {
	// Enqueue inserts a new item. The payload is serialized to text and is
	// otherwise opaque to the store.
	Enqueue(ctx context.Context, typ string, locked bool, payload any) error

	// Fetch returns items matching the filter and locks every returned item.
	// With respectLocks set, already-locked items are excluded; disabling it
	// bypasses the cooperative lock entirely.
	Fetch(ctx context.Context, filter Filter, respectLocks bool) ([]Item, error)

	// SetLockStatus flips an item's lock flag by primary key. Idempotent.
	SetLockStatus(ctx context.Context, item Item, locked bool) error

	// Remove permanently deletes an item after successful processing.
	Remove(ctx context.Context, item Item) error
}

// marshalPayload serializes a payload for storage. Raw bytes pass through
// untouched; everything else is JSON-encoded.
func marshalPayload(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case []byte:
		return p, nil
	case json.RawMessage:
		return p, nil
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Join(ErrPayloadMarshal, err)
	}
	return encoded, nil
}
