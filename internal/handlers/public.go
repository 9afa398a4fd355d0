package handlers

import (
	"errors"
	"net/http"

	"github.com/menuboard/api/internal/platform/httpx"
	"github.com/menuboard/api/internal/services"
)

// PublicHandlers serves the unauthenticated menu view.
type PublicHandlers struct {
	menu *services.MenuService
}

// NewPublicHandlers constructs PublicHandlers.
func NewPublicHandlers(menu *services.MenuService) (*PublicHandlers, error) {
	if menu == nil {
		return nil, errors.New("public handlers: menu service is required")
	}
	return &PublicHandlers{menu: menu}, nil
}

// Menu answers the public page payload out of the live caches; no store
// read happens on the request path. `?category=` filters the product list,
// the filter row always shows every label.
func (h *PublicHandlers) Menu(w http.ResponseWriter, r *http.Request) {
	view := h.menu.View(r.URL.Query().Get("category"))
	httpx.WriteJSON(r.Context(), w, http.StatusOK, view)
}
