package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/maison-counter/internal/ratelimit"
)

// NewAPIConfig returns the huma configuration used by the server. Response
// bodies are plain JSON without the $schema link, and errors use APIError.
func NewAPIConfig() huma.Config {
	UseErrorModel()

	config := huma.DefaultConfig("Maison Counter", "1.0.0")
	config.CreateHooks = nil

	return config
}

// NewRouter creates the chi router with JSON answers for unknown routes and verbs.
func NewRouter() *chi.Mux {
	router := chi.NewMux()
	router.NotFound(NotFound)
	router.MethodNotAllowed(MethodNotAllowed)

	return router
}

// RegisterRoutes registers the counter routes. Each carries the rate limit
// scope it is checked against when rate limiting is enabled.
func RegisterRoutes(api huma.API, h *TrackingHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "resolve-link",
		Method:      http.MethodGet,
		Path:        "/go/{slug}",
		Summary:     "Follow affiliate link",
		Description: "Counts a click on the link and redirects permanently to its destination.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead},
		},
	}, h.Redirect)

	huma.Register(api, huma.Operation{
		OperationID: "resolve-link-missing-slug",
		Method:      http.MethodGet,
		Path:        "/go/",
		Hidden:      true,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRead},
		},
	}, h.MissingSlug)

	huma.Register(api, huma.Operation{
		OperationID: "record-view",
		Method:      http.MethodPost,
		Path:        "/posts/{id}/view",
		Summary:     "Count post view",
		Description: "Increments the view counter of a post. Unknown posts are acknowledged without counting unless configured to reject.",
		Tags:        []string{"Posts"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeWrite},
		},
	}, h.RecordView)

	huma.Register(api, huma.Operation{
		OperationID: "record-view-missing-id",
		Method:      http.MethodPost,
		Path:        "/posts//view",
		Hidden:      true,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeWrite},
		},
	}, h.MissingPostID)

	huma.Register(api, huma.Operation{
		OperationID: "admin-stats",
		Method:      http.MethodGet,
		Path:        "/admin/stats",
		Summary:     "Dashboard statistics",
		Description: "Returns the number of posts, users and total post views.",
		Tags:        []string{"Admin"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeAdmin},
		},
	}, h.Stats)
}
