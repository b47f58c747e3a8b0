package tracking_test

import (
	"strings"
	"testing"

	"github.com/serroba/maison-counter/internal/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlug(t *testing.T) {
	valid := []string{"silk-blazer", "SS25_look.3", "a~b", strings.Repeat("x", tracking.MaxKeyLength)}
	for _, raw := range valid {
		slug, err := tracking.ParseSlug(raw)

		require.NoError(t, err, raw)
		assert.Equal(t, tracking.Slug(raw), slug)
	}

	invalid := []string{"", "with space", "a/b", "q?x=1", "%20", strings.Repeat("x", tracking.MaxKeyLength+1)}
	for _, raw := range invalid {
		_, err := tracking.ParseSlug(raw)

		assert.True(t, tracking.IsValidation(err), "expected validation error for %q", raw)
	}
}

func TestParseContentID(t *testing.T) {
	id, err := tracking.ParseContentID(" 7d3f2a10-1b2c-4d5e-8f90-a1b2c3d4e5f6 ")
	require.NoError(t, err)
	assert.Equal(t, tracking.ContentID("7d3f2a10-1b2c-4d5e-8f90-a1b2c3d4e5f6"), id)

	_, err = tracking.ParseContentID("")
	var verr *tracking.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Missing post ID", verr.Message)

	for _, raw := range []string{"a/b", "a b", strings.Repeat("9", tracking.MaxKeyLength+1)} {
		_, err := tracking.ParseContentID(raw)

		assert.True(t, tracking.IsValidation(err), raw)
	}
}
