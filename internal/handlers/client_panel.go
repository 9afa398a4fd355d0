package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/menuboard/api/internal/access"
	"github.com/menuboard/api/internal/platform/auth"
	"github.com/menuboard/api/internal/platform/httpx"
	"github.com/menuboard/api/internal/services"
)

// ClientPanelHandlers serves the restricted client back office: products and
// categories only, with the duplicate-category check on.
type ClientPanelHandlers struct {
	policy    *access.Policy
	endpoints catalogEndpoints
}

// ClientPanelDeps wires dependencies for the client panel.
type ClientPanelDeps struct {
	Catalog services.CatalogService
	Policy  *access.Policy
}

// NewClientPanelHandlers constructs the client panel handlers.
func NewClientPanelHandlers(deps ClientPanelDeps) (*ClientPanelHandlers, error) {
	if deps.Catalog == nil {
		return nil, errors.New("client panel: catalog service is required")
	}
	if deps.Policy == nil {
		return nil, errors.New("client panel: access policy is required")
	}
	return &ClientPanelHandlers{
		policy:    deps.Policy,
		endpoints: catalogEndpoints{catalog: deps.Catalog, ensureUniqueCategory: true},
	}, nil
}

// RequireClient gates the panel. Developers are redirected to their own
// panel; denied principals get the access-denied payload while their
// session stays live, the one place a denial does not sign out.
func (h *ClientPanelHandlers) RequireClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, ok := auth.IdentityFromContext(ctx)
		if !ok || !identity.HasEmail() {
			httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "sign in required", http.StatusUnauthorized))
			return
		}
		switch h.policy.Classify(identity.Email) {
		case access.ClientAccess:
			next.ServeHTTP(w, r)
		case access.DeveloperAccess:
			http.Redirect(w, r, DeveloperPanelPath, http.StatusTemporaryRedirect)
		default:
			httpx.WriteError(ctx, w, httpx.NewError("access_denied", "account is not authorized for this panel", http.StatusForbidden))
		}
	})
}

// Routes registers the panel routes.
func (h *ClientPanelHandlers) Routes(r chi.Router) {
	h.endpoints.register(r)
}
