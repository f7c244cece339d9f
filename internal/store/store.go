// Package store persists the ledger state as a single serialized blob under
// one key.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FundDesk/internal/model"
)

// StorageKey is the key the state blob lives under in key/value backends.
const StorageKey = "funddesk.system_state"

// Store loads and saves the whole ledger state. Load returns a zero state,
// not an error, when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (*model.SystemState, error)
	Save(ctx context.Context, state *model.SystemState) error
	Close() error
}

func decodeState(data []byte) (*model.SystemState, error) {
	var state model.SystemState
	if len(data) == 0 {
		return &state, nil
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &state, nil
}

func encodeState(state *model.SystemState) ([]byte, error) {
	state.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// Open returns the store for driver: "file" (default), "sqlite" or "postgres".
// path is used by file and sqlite, dsn by postgres.
func Open(ctx context.Context, driver, path, dsn string) (Store, error) {
	switch driver {
	case "", "file":
		return NewFileStore(path), nil
	case "sqlite":
		return NewSQLiteStore(path)
	case "postgres":
		return NewPostgresStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
