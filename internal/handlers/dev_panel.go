package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/menuboard/api/internal/access"
	"github.com/menuboard/api/internal/platform/auth"
	"github.com/menuboard/api/internal/platform/httpx"
	"github.com/menuboard/api/internal/services"
)

// DevPanelHandlers serves the full developer back office: the catalog
// without the duplicate-category check, the gallery, the background record,
// and site settings.
type DevPanelHandlers struct {
	policy      *access.Policy
	endpoints   catalogEndpoints
	gallery     services.GalleryService
	settings    services.SettingsService
	sessions    SessionManager
	clearCookie func(http.ResponseWriter)
}

// DevPanelDeps wires dependencies for the developer panel.
type DevPanelDeps struct {
	Catalog  services.CatalogService
	Gallery  services.GalleryService
	Settings services.SettingsService
	Policy   *access.Policy
	Sessions SessionManager
	// ClearCookie removes the session cookie; shared with AuthHandlers so
	// both produce the same cookie attributes.
	ClearCookie func(http.ResponseWriter)
}

// NewDevPanelHandlers constructs the developer panel handlers.
func NewDevPanelHandlers(deps DevPanelDeps) (*DevPanelHandlers, error) {
	if deps.Catalog == nil {
		return nil, errors.New("dev panel: catalog service is required")
	}
	if deps.Gallery == nil {
		return nil, errors.New("dev panel: gallery service is required")
	}
	if deps.Settings == nil {
		return nil, errors.New("dev panel: settings service is required")
	}
	if deps.Policy == nil {
		return nil, errors.New("dev panel: access policy is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("dev panel: session manager is required")
	}
	clearCookie := deps.ClearCookie
	if clearCookie == nil {
		clearCookie = func(http.ResponseWriter) {}
	}
	return &DevPanelHandlers{
		policy:      deps.Policy,
		endpoints:   catalogEndpoints{catalog: deps.Catalog, ensureUniqueCategory: false},
		gallery:     deps.Gallery,
		settings:    deps.Settings,
		sessions:    deps.Sessions,
		clearCookie: clearCookie,
	}, nil
}

// RequireDeveloper gates the panel. Clients are redirected to the client
// panel; denied principals are signed out, revocation and cookie clearing
// included, before the 403.
func (h *DevPanelHandlers) RequireDeveloper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, ok := auth.IdentityFromContext(ctx)
		if !ok || !identity.HasEmail() {
			httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "sign in required", http.StatusUnauthorized))
			return
		}
		switch h.policy.Classify(identity.Email) {
		case access.DeveloperAccess:
			next.ServeHTTP(w, r)
		case access.ClientAccess:
			http.Redirect(w, r, ClientPanelPath, http.StatusTemporaryRedirect)
		default:
			_ = h.sessions.RevokeSessions(ctx, identity.UID)
			h.clearCookie(w)
			httpx.WriteError(ctx, w, httpx.NewError("access_denied", "account is not authorized for this panel", http.StatusForbidden))
		}
	})
}

// Routes registers the panel routes.
func (h *DevPanelHandlers) Routes(r chi.Router) {
	h.endpoints.register(r)

	r.Get("/gallery", h.listGallery)
	r.Post("/gallery", h.addGalleryItem)
	r.Delete("/gallery/{itemID}", h.deleteGalleryItem)

	r.Get("/background", h.listBackgrounds)
	r.Post("/background", h.addBackground)
	r.Put("/background/{backgroundID}", h.updateBackground)
	r.Delete("/background/{backgroundID}", h.deleteBackground)

	r.Get("/settings", h.getSettings)
	r.Put("/settings", h.saveSettings)
}

type imageRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ImageBase64 string `json:"imageBase64"`
}

func (req imageRequest) command() services.ImageCommand {
	return services.ImageCommand{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.Image,
		ImageData:   req.ImageBase64,
	}
}

func (h *DevPanelHandlers) listGallery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := h.gallery.ListGallery(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, map[string]any{"gallery": items})
}

func (h *DevPanelHandlers) addGalleryItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed gallery payload", http.StatusBadRequest))
		return
	}
	created, err := h.gallery.AddGalleryItem(ctx, req.command())
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusCreated, created)
}

func (h *DevPanelHandlers) deleteGalleryItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.gallery.DeleteGalleryItem(ctx, chi.URLParam(r, "itemID")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *DevPanelHandlers) listBackgrounds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := h.gallery.ListBackgrounds(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, map[string]any{"background": items})
}

func (h *DevPanelHandlers) addBackground(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed background payload", http.StatusBadRequest))
		return
	}
	created, err := h.gallery.AddBackground(ctx, req.command())
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusCreated, created)
}

func (h *DevPanelHandlers) updateBackground(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed background payload", http.StatusBadRequest))
		return
	}
	if err := h.gallery.UpdateBackground(ctx, chi.URLParam(r, "backgroundID"), req.command()); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *DevPanelHandlers) deleteBackground(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.gallery.DeleteBackground(ctx, chi.URLParam(r, "backgroundID")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *DevPanelHandlers) getSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.settings.Get(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, settings)
}

type settingsRequest struct {
	Title              string `json:"title"`
	CompanyName        string `json:"companyName"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
	Address            string `json:"address"`
	About              string `json:"about"`
	MapURL             string `json:"mapUrl"`
	HeroImage          string `json:"heroImage"`
	HeroTextColor      string `json:"heroTextColor"`
	HeroOverlayColor   string `json:"heroOverlayColor"`
	HeroOverlayOpacity any    `json:"heroOverlayOpacity"`
	ShowBadges         *bool  `json:"showBadges"`
}

func (h *DevPanelHandlers) saveSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "malformed settings payload", http.StatusBadRequest))
		return
	}
	err := h.settings.Save(ctx, services.SettingsCommand{
		Title:              req.Title,
		CompanyName:        req.CompanyName,
		Phone:              req.Phone,
		Email:              req.Email,
		Address:            req.Address,
		About:              req.About,
		MapURL:             req.MapURL,
		HeroImage:          req.HeroImage,
		HeroTextColor:      req.HeroTextColor,
		HeroOverlayColor:   req.HeroOverlayColor,
		HeroOverlayOpacity: req.HeroOverlayOpacity,
		ShowBadges:         req.ShowBadges,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	httpx.WriteJSON(ctx, w, http.StatusOK, map[string]string{"status": "saved"})
}
