package handler

import (
	"net/http"

	"bakehouse/internal/catalog"

	"github.com/rs/zerolog"
)

// MenuHandler serves the menu catalogue and its admin reload endpoint.
type MenuHandler struct {
	catalogs  *catalog.Holder
	loader    catalog.Loader
	sourceKey string
	logger    zerolog.Logger
}

// NewMenuHandler creates a new menu handler. sourceKey identifies the
// catalogue source for reloads (file path or S3 key, matching the loader).
func NewMenuHandler(catalogs *catalog.Holder, loader catalog.Loader, sourceKey string, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		catalogs:  catalogs,
		loader:    loader,
		sourceKey: sourceKey,
		logger:    logger.With().Str("handler", "menu").Logger(),
	}
}

// GetMenu handles GET /api/menu requests.
func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.catalogs.Current().Menu())
}

// ReloadCatalog handles POST /api/admin/reload-catalog requests. The
// catalogue is re-read from its source and swapped in atomically; the
// old snapshot keeps serving until the new one is fully loaded.
func (h *MenuHandler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	fresh, err := h.loader.Load(r.Context(), h.sourceKey)
	if err != nil {
		h.logger.Error().Err(err).Msg("catalog reload failed")
		writeError(w, http.StatusInternalServerError, "failed to reload catalog", h.logger)
		return
	}

	h.catalogs.Replace(fresh)
	h.logger.Info().Int("item_count", fresh.ItemCount()).Msg("catalog reloaded")

	writeJSON(w, http.StatusOK, map[string]int{"itemCount": fresh.ItemCount()})
}
