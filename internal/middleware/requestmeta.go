package middleware

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	nanoid "github.com/jaevor/go-nanoid"
	"github.com/serroba/maison-counter/internal/handlers"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxIncomingRequestID = 64

// RequestMeta is a middleware that adds client IP, user-agent, referrer and a
// request id to the request context. An incoming X-Request-ID is reused.
func RequestMeta(_ huma.API) (func(ctx huma.Context, next func(huma.Context)), error) {
	newID, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("request id generator: %w", err)
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		requestID := ctx.Header(RequestIDHeader)
		if requestID == "" || len(requestID) > maxIncomingRequestID {
			requestID = newID()
		}

		ctx.SetHeader(RequestIDHeader, requestID)

		meta := handlers.RequestMeta{
			RequestID: requestID,
			ClientIP:  clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		ctx = huma.WithContext(ctx, handlers.ContextWithRequestMeta(ctx.Context(), meta))

		next(ctx)
	}, nil
}
