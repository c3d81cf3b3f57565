package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"bakehouse/internal/model"

	"github.com/rs/zerolog"
)

// Loader loads a catalog snapshot from a source identified by key
// (a file path for the file loader, an object key for the S3 loader).
type Loader interface {
	Load(ctx context.Context, key string) (*Catalog, error)
}

// fileLoader implements Loader for reading menu JSON from local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based catalog loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads a menu JSON file and returns a catalog snapshot.
func (l *fileLoader) Load(ctx context.Context, path string) (*Catalog, error) {
	l.logger.Info().Str("file", path).Msg("loading catalog file")

	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read catalog file")
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	catalog, err := decodeMenu(data)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to decode catalog file")
		return nil, fmt.Errorf("failed to decode catalog file %s: %w", path, err)
	}

	l.logger.Info().
		Str("file", path).
		Int("item_count", catalog.ItemCount()).
		Msg("catalog loaded")

	return catalog, nil
}

// decodeMenu parses a menu document and validates the minimum shape the
// pricing engine relies on.
func decodeMenu(data []byte) (*Catalog, error) {
	var menu model.Menu
	if err := json.Unmarshal(data, &menu); err != nil {
		return nil, err
	}

	if len(menu.Categories) == 0 {
		return nil, fmt.Errorf("menu document has no categories")
	}

	seen := make(map[string]struct{})
	for _, category := range menu.Categories {
		for _, item := range category.Items {
			if item.ID == "" {
				return nil, fmt.Errorf("menu item without ID in category %q", category.ID)
			}
			if _, dup := seen[item.ID]; dup {
				return nil, fmt.Errorf("duplicate menu item ID %q", item.ID)
			}
			seen[item.ID] = struct{}{}
		}
	}

	return New(menu), nil
}
