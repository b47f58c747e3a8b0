package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/maison-counter/internal/analytics"
	"github.com/serroba/maison-counter/internal/analytics/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNoop_SaveLinkClicked(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	noop := store.NewNoop(zap.New(core))

	err := noop.SaveLinkClicked(context.Background(), &analytics.LinkClickedEvent{
		ID:         "evt-1",
		Slug:       "silk-blazer",
		ClickCount: 6,
		ClickedAt:  time.Now(),
	})

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "silk-blazer", logs.All()[0].ContextMap()["slug"])
}

func TestNoop_SaveContentViewed(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	noop := store.NewNoop(zap.New(core))

	err := noop.SaveContentViewed(context.Background(), &analytics.ContentViewedEvent{
		ID:        "evt-2",
		ContentID: "post-1",
		ViewCount: 3,
		ViewedAt:  time.Now(),
	})

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "post-1", logs.All()[0].ContextMap()["contentId"])
}
