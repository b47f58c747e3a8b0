package health

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/maison-counter/internal/ratelimit"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"

	componentHealthy   = "healthy"
	componentUnhealthy = "unhealthy"
)

const defaultTimeout = 2 * time.Second

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts redis.Client to Checker interface.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Handler reports the state of every registered dependency.
type Handler struct {
	checkers map[string]Checker
	timeout  time.Duration
}

// NewHandler creates a health handler over the named checkers. The memory
// store has nothing to check, so an empty map is valid.
func NewHandler(checkers map[string]Checker) *Handler {
	return &Handler{checkers: checkers, timeout: defaultTimeout}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status     string            `example:"ok" json:"status"`
		Components map[string]string `json:"components"`
	}
}

// Check pings every dependency. It never fails: a dependency that does not
// answer marks the service degraded.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = StatusOK
	resp.Body.Components = make(map[string]string, len(h.checkers))

	for name, checker := range h.checkers {
		pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := checker.Ping(pingCtx)

		cancel()

		if err != nil {
			resp.Body.Components[name] = componentUnhealthy
			resp.Body.Status = StatusDegraded

			continue
		}

		resp.Body.Components[name] = componentHealthy
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, h.Check)
}
