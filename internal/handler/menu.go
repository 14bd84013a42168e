package handler

import (
	"net/http"

	"github.com/xenking/cat-canteen/internal/api"
)

// GetMenu serves the whole menu grouped by category.
func (h *Handler) GetMenu(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.Menu(h.menu.Sections()))
}

// GetMenuItem serves one menu item.
func (h *Handler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.menu.Lookup(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}
	writeJSON(w, http.StatusOK, (*api.MenuItem)(&item))
}
