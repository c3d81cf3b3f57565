package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"bakehouse/internal/model"

	"github.com/rs/zerolog"
)

// Persister is the pluggable persistence adapter behind a cart store.
// Writes are whole-record: the adapter saves the complete cart state on
// every mutation. Two stores writing through to the same record silently
// overwrite each other (last write wins); there is no coordination.
type Persister interface {
	// Load reads the persisted cart record. The second return value is
	// false when no record exists yet.
	Load(ctx context.Context) (model.CartState, bool, error)

	// Save writes the complete cart record.
	Save(ctx context.Context, state model.CartState) error
}

// filePersister stores the cart record as a JSON file on local disk.
type filePersister struct {
	path   string
	logger zerolog.Logger
}

// NewFilePersister creates a file-backed cart persister.
func NewFilePersister(path string, logger zerolog.Logger) Persister {
	return &filePersister{
		path:   path,
		logger: logger.With().Str("component", "cart-file-persister").Logger(),
	}
}

func (p *filePersister) Load(ctx context.Context) (model.CartState, bool, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.CartState{Totals: model.ZeroTotals()}, false, nil
		}
		return model.CartState{}, false, fmt.Errorf("failed to read cart file %s: %w", p.path, err)
	}

	var state model.CartState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.CartState{}, false, fmt.Errorf("failed to decode cart file %s: %w", p.path, err)
	}
	return state, true, nil
}

func (p *filePersister) Save(ctx context.Context, state model.CartState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cart state: %w", err)
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("failed to replace cart file: %w", err)
	}
	return nil
}
