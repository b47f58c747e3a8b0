package tracking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// MissingContentPolicy decides how a view for an unknown post is answered.
type MissingContentPolicy string

const (
	// IgnoreMissing acknowledges the view without counting anything.
	IgnoreMissing MissingContentPolicy = "ignore"
	// RejectMissing reports the unknown post as ErrNotFound.
	RejectMissing MissingContentPolicy = "reject"
)

// ParseMissingContentPolicy converts a configuration value to a policy.
func ParseMissingContentPolicy(s string) (MissingContentPolicy, error) {
	switch p := MissingContentPolicy(s); p {
	case IgnoreMissing, RejectMissing:
		return p, nil
	case "":
		return IgnoreMissing, nil
	default:
		return "", fmt.Errorf("unknown missing content policy %q", s)
	}
}

// Resolution is the outcome of resolving a link.
type Resolution struct {
	Link *TrackedLink
	// Counted is false when the increment failed and Link came from a plain lookup.
	Counted bool
}

// ViewResult is the outcome of counting a view.
type ViewResult struct {
	ID        ContentID
	ViewCount int64
	Counted   bool
}

// Service implements the counter operations on top of a repository.
type Service struct {
	links         LinkRepository
	contents      ContentRepository
	stats         StatsRepository
	missingPolicy MissingContentPolicy
	logger        *zap.Logger
}

// NewService creates a tracking service.
func NewService(
	links LinkRepository,
	contents ContentRepository,
	stats StatsRepository,
	missingPolicy MissingContentPolicy,
	logger *zap.Logger,
) *Service {
	if missingPolicy == "" {
		missingPolicy = IgnoreMissing
	}

	return &Service{
		links:         links,
		contents:      contents,
		stats:         stats,
		missingPolicy: missingPolicy,
		logger:        logger,
	}
}

// ResolveLink counts a click on the slug and returns the link to redirect to.
//
// A failed increment does not block the redirect: the link is looked up without
// counting and returned with Counted set to false. Only a failed lookup is an error.
func (s *Service) ResolveLink(ctx context.Context, rawSlug string) (*Resolution, error) {
	slug, err := ParseSlug(rawSlug)
	if err != nil {
		return nil, err
	}

	link, err := s.links.IncrementClicks(ctx, slug)
	if err == nil {
		return &Resolution{Link: link, Counted: true}, nil
	}

	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}

	s.logger.Warn("click increment failed, redirecting with stale count",
		zap.String("slug", string(slug)),
		zap.String("stage", string(StagePersist)),
		zap.Error(err),
	)

	link, err = s.links.GetLink(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, &StoreError{Op: "resolve link", Stage: StageLookup, Err: err}
	}

	return &Resolution{Link: link, Counted: false}, nil
}

// RecordView counts a view of the post.
func (s *Service) RecordView(ctx context.Context, rawID string) (*ViewResult, error) {
	id, err := ParseContentID(rawID)
	if err != nil {
		return nil, err
	}

	count, err := s.contents.IncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if s.missingPolicy == RejectMissing {
				return nil, ErrNotFound
			}

			s.logger.Debug("view for unknown post ignored", zap.String("id", string(id)))

			return &ViewResult{ID: id}, nil
		}

		return nil, &StoreError{Op: "increment views", Stage: StagePersist, Err: err}
	}

	return &ViewResult{ID: id, ViewCount: count, Counted: true}, nil
}

// Stats returns the dashboard aggregates.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.stats.Stats(ctx)
	if err != nil {
		return nil, &StoreError{Op: "aggregate stats", Stage: StageAggregate, Err: err}
	}

	return stats, nil
}
