package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/maison-counter/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIConfig_InstallsErrorModel(t *testing.T) {
	handlers.NewAPIConfig()

	t.Run("plain error", func(t *testing.T) {
		err := huma.Error404NotFound("Link not found")

		var apiErr *handlers.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.GetStatus())
		assert.Equal(t, "Link not found", apiErr.Message)
		assert.Empty(t, apiErr.Details)
	})

	t.Run("validation details are kept", func(t *testing.T) {
		err := huma.NewError(http.StatusUnprocessableEntity, "validation failed", errors.New("body.id: required"))

		var apiErr *handlers.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, []string{"body.id: required"}, apiErr.Details)
	})
}
