package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/maison-counter/internal/analytics"
	"github.com/serroba/maison-counter/internal/handlers"
	"github.com/serroba/maison-counter/internal/store"
	"github.com/serroba/maison-counter/internal/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const silkBlazer = "https://shop.example/products/silk-blazer"

// recordingPublishers captures every published event.
type recordingPublishers struct {
	mu     sync.Mutex
	clicks []*analytics.LinkClickedEvent
	views  []*analytics.ContentViewedEvent
	err    error
}

func (r *recordingPublishers) publishers() *analytics.Publishers {
	return &analytics.Publishers{
		LinkClicked: func(_ context.Context, event *analytics.LinkClickedEvent) error {
			r.mu.Lock()
			defer r.mu.Unlock()

			r.clicks = append(r.clicks, event)

			return r.err
		},
		ContentViewed: func(_ context.Context, event *analytics.ContentViewedEvent) error {
			r.mu.Lock()
			defer r.mu.Unlock()

			r.views = append(r.views, event)

			return r.err
		},
	}
}

// stubTracker returns canned results.
type stubTracker struct {
	resolution *tracking.Resolution
	view       *tracking.ViewResult
	stats      *tracking.Stats
	err        error
}

func (s *stubTracker) ResolveLink(_ context.Context, _ string) (*tracking.Resolution, error) {
	return s.resolution, s.err
}

func (s *stubTracker) RecordView(_ context.Context, _ string) (*tracking.ViewResult, error) {
	return s.view, s.err
}

func (s *stubTracker) Stats(_ context.Context) (*tracking.Stats, error) {
	return s.stats, s.err
}

func seededStore(t *testing.T) *store.MemoryStore {
	t.Helper()

	ctx := context.Background()
	s := store.NewMemoryStore()

	require.NoError(t, s.SaveLink(ctx, &tracking.TrackedLink{Slug: "silk-blazer", Destination: silkBlazer, ClickCount: 5}))
	require.NoError(t, s.SaveContent(ctx, &tracking.ContentItem{ID: "post-1", ViewCount: 10}))
	require.NoError(t, s.SaveContent(ctx, &tracking.ContentItem{ID: "post-2", ViewCount: 32}))
	require.NoError(t, s.AddProfile(ctx, "user-1"))

	return s
}

func newServiceHandler(
	s *store.MemoryStore,
	policy tracking.MissingContentPolicy,
	pubs *recordingPublishers,
) *handlers.TrackingHandler {
	svc := tracking.NewService(s, s, s, policy, zap.NewNop())

	return handlers.NewTrackingHandler(svc, pubs.publishers(), zap.NewNop())
}

func newTestRouter(h *handlers.TrackingHandler) *chi.Mux {
	router := handlers.NewRouter()
	api := humachi.New(router, handlers.NewAPIConfig())
	handlers.RegisterRoutes(api, h)

	return router
}

func serve(router http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())

	return body
}

func TestRedirect(t *testing.T) {
	t.Run("counts the click and redirects", func(t *testing.T) {
		s := seededStore(t)
		pubs := &recordingPublishers{}
		router := newTestRouter(newServiceHandler(s, tracking.IgnoreMissing, pubs))

		w := serve(router, http.MethodGet, "/go/silk-blazer")

		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, silkBlazer, w.Header().Get("Location"))

		link, err := s.GetLink(context.Background(), "silk-blazer")
		require.NoError(t, err)
		assert.Equal(t, int64(6), link.ClickCount)

		require.Len(t, pubs.clicks, 1)
		assert.Equal(t, "silk-blazer", pubs.clicks[0].Slug)
		assert.Equal(t, int64(6), pubs.clicks[0].ClickCount)
		assert.NotEmpty(t, pubs.clicks[0].ID)
	})

	t.Run("unknown slug is 404", func(t *testing.T) {
		s := seededStore(t)
		pubs := &recordingPublishers{}
		router := newTestRouter(newServiceHandler(s, tracking.IgnoreMissing, pubs))

		w := serve(router, http.MethodGet, "/go/nope")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, map[string]any{"error": "Link not found"}, decodeBody(t, w))
		assert.Empty(t, pubs.clicks)
	})

	t.Run("missing slug is 400", func(t *testing.T) {
		s := seededStore(t)
		router := newTestRouter(newServiceHandler(s, tracking.IgnoreMissing, &recordingPublishers{}))

		w := serve(router, http.MethodGet, "/go/")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, map[string]any{"error": "Missing slug"}, decodeBody(t, w))
	})

	t.Run("malformed slug is 400", func(t *testing.T) {
		s := seededStore(t)
		router := newTestRouter(newServiceHandler(s, tracking.IgnoreMissing, &recordingPublishers{}))

		w := serve(router, http.MethodGet, "/go/silk%20blazer")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Malformed slug", decodeBody(t, w)["error"])
	})

	t.Run("wrong verb is 405", func(t *testing.T) {
		s := seededStore(t)
		router := newTestRouter(newServiceHandler(s, tracking.IgnoreMissing, &recordingPublishers{}))

		w := serve(router, http.MethodPost, "/go/silk-blazer")

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, map[string]any{"error": "Method not allowed"}, decodeBody(t, w))

		link, err := s.GetLink(context.Background(), "silk-blazer")
		require.NoError(t, err)
		assert.Equal(t, int64(5), link.ClickCount)
	})

	t.Run("redirects without publishing when not counted", func(t *testing.T) {
		pubs := &recordingPublishers{}
		tracker := &stubTracker{resolution: &tracking.Resolution{
			Link:    &tracking.TrackedLink{Slug: "silk-blazer", Destination: silkBlazer, ClickCount: 5},
			Counted: false,
		}}
		handler := handlers.NewTrackingHandler(tracker, pubs.publishers(), zap.NewNop())

		resp, err := handler.Redirect(context.Background(), &handlers.RedirectRequest{Slug: "silk-blazer"})

		require.NoError(t, err)
		assert.Equal(t, http.StatusMovedPermanently, resp.Status)
		assert.Equal(t, silkBlazer, resp.Location)
		assert.Empty(t, pubs.clicks)
	})

	t.Run("publish failure does not block the redirect", func(t *testing.T) {
		s := seededStore(t)
		pubs := &recordingPublishers{err: errors.New("stream down")}
		router := newTestRouter(newServiceHandler(s, tracking.IgnoreMissing, pubs))

		w := serve(router, http.MethodGet, "/go/silk-blazer")

		assert.Equal(t, http.StatusMovedPermanently, w.Code)
	})

	t.Run("lookup failure is a generic 500 logged with its stage", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		tracker := &stubTracker{err: &tracking.StoreError{
			Op:    "resolve link",
			Stage: tracking.StageLookup,
			Err:   errors.New("connection refused"),
		}}
		router := newTestRouter(handlers.NewTrackingHandler(tracker, nil, zap.New(core)))

		w := serve(router, http.MethodGet, "/go/silk-blazer")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, map[string]any{"error": "Internal Server Error"}, decodeBody(t, w))
		assert.NotContains(t, w.Body.String(), "connection refused")

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "lookup", fields["stage"])
		assert.Equal(t, "resolve link", fields["op"])
	})
}

func TestRecordView(t *testing.T) {
	t.Run("counts the view", func(t *testing.T) {
		s := seededStore(t)
		pubs := &recordingPublishers{}
		router := newTestRouter(newServiceHandler(s, tracking.IgnoreMissing, pubs))

		w := serve(router, http.MethodPost, "/posts/post-1/view")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]any{"success": true}, decodeBody(t, w))

		stats, err := s.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(43), stats.TotalViews)

		require.Len(t, pubs.views, 1)
		assert.Equal(t, "post-1", pubs.views[0].ContentID)
		assert.Equal(t, int64(11), pubs.views[0].ViewCount)
	})

	t.Run("unknown post is acknowledged without counting", func(t *testing.T) {
		s := seededStore(t)
		pubs := &recordingPublishers{}
		router := newTestRouter(newServiceHandler(s, tracking.IgnoreMissing, pubs))

		w := serve(router, http.MethodPost, "/posts/ghost/view")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]any{"success": true}, decodeBody(t, w))
		assert.Empty(t, pubs.views)

		stats, err := s.Stats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.TotalPosts)
		assert.Equal(t, int64(42), stats.TotalViews)
	})

	t.Run("unknown post is 404 when rejecting", func(t *testing.T) {
		s := seededStore(t)
		router := newTestRouter(newServiceHandler(s, tracking.RejectMissing, &recordingPublishers{}))

		w := serve(router, http.MethodPost, "/posts/ghost/view")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, map[string]any{"error": "Post not found"}, decodeBody(t, w))
	})

	t.Run("blank id is 400", func(t *testing.T) {
		s := seededStore(t)
		router := newTestRouter(newServiceHandler(s, tracking.IgnoreMissing, &recordingPublishers{}))

		w := serve(router, http.MethodPost, "/posts/%20/view")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, map[string]any{"error": "Missing post ID"}, decodeBody(t, w))
	})

	t.Run("empty id segment is 400", func(t *testing.T) {
		s := seededStore(t)
		pubs := &recordingPublishers{}
		router := newTestRouter(newServiceHandler(s, tracking.IgnoreMissing, pubs))

		w := serve(router, http.MethodPost, "/posts//view")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, map[string]any{"error": "Missing post ID"}, decodeBody(t, w))
		assert.Empty(t, pubs.views)
	})

	t.Run("wrong verb is 405", func(t *testing.T) {
		s := seededStore(t)
		router := newTestRouter(newServiceHandler(s, tracking.IgnoreMissing, &recordingPublishers{}))

		w := serve(router, http.MethodGet, "/posts/post-1/view")

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, map[string]any{"error": "Method not allowed"}, decodeBody(t, w))
	})

	t.Run("store failure is 500", func(t *testing.T) {
		tracker := &stubTracker{err: &tracking.StoreError{
			Op:    "increment views",
			Stage: tracking.StagePersist,
			Err:   errors.New("disk full"),
		}}
		router := newTestRouter(handlers.NewTrackingHandler(tracker, nil, zap.NewNop()))

		w := serve(router, http.MethodPost, "/posts/post-1/view")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, map[string]any{"error": "Failed to increment view count"}, decodeBody(t, w))
	})
}

func TestStats(t *testing.T) {
	t.Run("returns the aggregates", func(t *testing.T) {
		s := seededStore(t)
		router := newTestRouter(newServiceHandler(s, tracking.IgnoreMissing, &recordingPublishers{}))

		w := serve(router, http.MethodGet, "/admin/stats")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]any{
			"totalPosts": float64(2),
			"totalUsers": float64(1),
			"totalViews": float64(42),
		}, decodeBody(t, w))
	})

	t.Run("empty store reports zeros", func(t *testing.T) {
		router := newTestRouter(newServiceHandler(store.NewMemoryStore(), tracking.IgnoreMissing, &recordingPublishers{}))

		w := serve(router, http.MethodGet, "/admin/stats")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]any{
			"totalPosts": float64(0),
			"totalUsers": float64(0),
			"totalViews": float64(0),
		}, decodeBody(t, w))
	})

	t.Run("wrong verb is 405", func(t *testing.T) {
		router := newTestRouter(newServiceHandler(store.NewMemoryStore(), tracking.IgnoreMissing, &recordingPublishers{}))

		w := serve(router, http.MethodPost, "/admin/stats")

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Equal(t, map[string]any{"error": "Method not allowed"}, decodeBody(t, w))
	})

	t.Run("store failure is 500", func(t *testing.T) {
		tracker := &stubTracker{err: &tracking.StoreError{
			Op:    "aggregate stats",
			Stage: tracking.StageAggregate,
			Err:   errors.New("timeout"),
		}}
		router := newTestRouter(handlers.NewTrackingHandler(tracker, nil, zap.NewNop()))

		w := serve(router, http.MethodGet, "/admin/stats")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, map[string]any{"error": "Failed to fetch stats"}, decodeBody(t, w))
	})
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(newServiceHandler(store.NewMemoryStore(), tracking.IgnoreMissing, &recordingPublishers{}))

	w := serve(router, http.MethodGet, "/wp-admin")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, map[string]any{"error": "Not found"}, decodeBody(t, w))
}
