// Package snapshot persists the full store state to a named durable slot and
// restores it at startup.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwalitptl/lims-api/internal/model"
	apperrors "github.com/jwalitptl/lims-api/pkg/errors"
)

// Version is written into every snapshot so future layout changes can be
// migrated on load.
const Version = 1

// State is the serialized form of the whole store. Timestamps round-trip
// exactly through JSON (RFC 3339 with sub-second precision).
type State struct {
	Version  int             `json:"version"`
	SavedAt  time.Time       `json:"saved_at"`
	Patients []model.Patient `json:"patients"`
	Orders   []model.Order   `json:"orders"`
}

// Empty returns the initial state used when no snapshot exists yet.
func Empty() *State {
	return &State{
		Version:  Version,
		Patients: []model.Patient{},
		Orders:   []model.Order{},
	}
}

// Adapter writes and reads snapshots. Save must never corrupt the last good
// snapshot when a write fails. Load returns Empty() when no snapshot exists;
// a corrupt snapshot surfaces a recoverable persistence error and the caller
// is expected to start from an empty state.
type Adapter interface {
	Save(ctx context.Context, state *State) error
	Load(ctx context.Context) (*State, error)
	Close() error
}

// Config selects and parameterizes a snapshot backend.
type Config struct {
	Driver      string
	Path        string
	Slot        string
	PostgresDSN string
	RedisURL    string
}

// Open constructs the adapter named by cfg.Driver: file (default), postgres,
// redis or memory.
func Open(cfg Config) (Adapter, error) {
	if cfg.Slot == "" {
		cfg.Slot = "lims-storage"
	}
	switch cfg.Driver {
	case "", "file":
		path := cfg.Path
		if path == "" {
			path = "data/" + cfg.Slot + ".json"
		}
		return NewFile(path), nil
	case "postgres":
		return NewPostgres(cfg.PostgresDSN, cfg.Slot)
	case "redis":
		return NewRedis(cfg.RedisURL, cfg.Slot)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown snapshot driver %q", cfg.Driver)
	}
}

func encode(state *State) ([]byte, error) {
	state.Version = Version
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, apperrors.Persistence("failed to encode snapshot", err)
	}
	return data, nil
}

func decode(data []byte) (*State, error) {
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, apperrors.Persistence("snapshot is corrupt", err)
	}
	if state.Patients == nil {
		state.Patients = []model.Patient{}
	}
	if state.Orders == nil {
		state.Orders = []model.Order{}
	}
	return &state, nil
}
