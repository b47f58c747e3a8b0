package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/serroba/maison-counter/internal/analytics"
	"github.com/serroba/maison-counter/internal/tracking"
	"go.uber.org/zap"
)

// Tracker is the counter service behind the HTTP operations.
type Tracker interface {
	ResolveLink(ctx context.Context, slug string) (*tracking.Resolution, error)
	RecordView(ctx context.Context, id string) (*tracking.ViewResult, error)
	Stats(ctx context.Context) (*tracking.Stats, error)
}

// TrackingHandler serves link redirects, view beacons and dashboard stats.
type TrackingHandler struct {
	tracker    Tracker
	publishers *analytics.Publishers
	logger     *zap.Logger
	now        func() time.Time
}

// NewTrackingHandler creates a new tracking handler.
func NewTrackingHandler(tracker Tracker, publishers *analytics.Publishers, logger *zap.Logger) *TrackingHandler {
	if publishers == nil {
		publishers = analytics.NoopPublishers()
	}

	return &TrackingHandler{
		tracker:    tracker,
		publishers: publishers,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Redirect counts a click and redirects to the link destination.
func (h *TrackingHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	res, err := h.tracker.ResolveLink(ctx, req.Slug)
	if err != nil {
		return nil, h.httpError(ctx, err, "Link not found", "Internal Server Error")
	}

	if res.Counted {
		meta, _ := RequestMetaFromContext(ctx)
		event := &analytics.LinkClickedEvent{
			ID:          uuid.NewString(),
			Slug:        string(res.Link.Slug),
			Destination: res.Link.Destination,
			ClickCount:  res.Link.ClickCount,
			ClickedAt:   h.now(),
			ClientIP:    meta.ClientIP,
			UserAgent:   meta.UserAgent,
			Referrer:    meta.Referrer,
			RequestID:   meta.RequestID,
		}

		if err := h.publishers.LinkClicked(ctx, event); err != nil {
			h.logger.Error("failed to publish click event",
				zap.String("slug", event.Slug),
				zap.String("request_id", meta.RequestID),
				zap.Error(err),
			)
		}
	}

	return &RedirectResponse{
		Status:   http.StatusMovedPermanently,
		Location: res.Link.Destination,
	}, nil
}

// MissingSlug answers /go/ without a slug.
func (h *TrackingHandler) MissingSlug(ctx context.Context, _ *struct{}) (*RedirectResponse, error) {
	_, err := h.tracker.ResolveLink(ctx, "")

	return nil, h.httpError(ctx, err, "Link not found", "Internal Server Error")
}

// RecordView counts a view of a post.
func (h *TrackingHandler) RecordView(ctx context.Context, req *ViewRequest) (*ViewResponse, error) {
	res, err := h.tracker.RecordView(ctx, req.ID)
	if err != nil {
		return nil, h.httpError(ctx, err, "Post not found", "Failed to increment view count")
	}

	if res.Counted {
		meta, _ := RequestMetaFromContext(ctx)
		event := &analytics.ContentViewedEvent{
			ID:        uuid.NewString(),
			ContentID: string(res.ID),
			ViewCount: res.ViewCount,
			ViewedAt:  h.now(),
			ClientIP:  meta.ClientIP,
			UserAgent: meta.UserAgent,
			Referrer:  meta.Referrer,
			RequestID: meta.RequestID,
		}

		if err := h.publishers.ContentViewed(ctx, event); err != nil {
			h.logger.Error("failed to publish view event",
				zap.String("contentId", event.ContentID),
				zap.String("request_id", meta.RequestID),
				zap.Error(err),
			)
		}
	}

	resp := &ViewResponse{}
	resp.Body.Success = true

	return resp, nil
}

// MissingPostID answers /posts//view, where the id segment is empty.
func (h *TrackingHandler) MissingPostID(ctx context.Context, _ *struct{}) (*ViewResponse, error) {
	_, err := h.tracker.RecordView(ctx, "")

	return nil, h.httpError(ctx, err, "Post not found", "Failed to increment view count")
}

// Stats returns the dashboard aggregates.
func (h *TrackingHandler) Stats(ctx context.Context, _ *struct{}) (*StatsResponse, error) {
	stats, err := h.tracker.Stats(ctx)
	if err != nil {
		return nil, h.httpError(ctx, err, "Not found", "Failed to fetch stats")
	}

	resp := &StatsResponse{}
	resp.Body.TotalPosts = stats.TotalPosts
	resp.Body.TotalUsers = stats.TotalUsers
	resp.Body.TotalViews = stats.TotalViews

	return resp, nil
}

// httpError maps service errors to responses. Store failures are logged and
// reported with a generic message.
func (h *TrackingHandler) httpError(ctx context.Context, err error, notFoundMsg, internalMsg string) error {
	var validation *tracking.ValidationError
	if errors.As(err, &validation) {
		return huma.Error400BadRequest(validation.Message)
	}

	if errors.Is(err, tracking.ErrNotFound) {
		return huma.Error404NotFound(notFoundMsg)
	}

	meta, _ := RequestMetaFromContext(ctx)
	fields := []zap.Field{
		zap.String("request_id", meta.RequestID),
		zap.Error(err),
	}

	if storeErr, ok := tracking.AsStoreError(err); ok {
		fields = append(fields,
			zap.String("op", storeErr.Op),
			zap.String("stage", string(storeErr.Stage)),
		)
	}

	h.logger.Error(internalMsg, fields...)

	return huma.Error500InternalServerError(internalMsg)
}
