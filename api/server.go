package api

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"

	"github.com/gcbaptista/go-ordered-list/config"
)

// NewHTTPHandler wraps the router with CORS and, when enabled, gzip response compression.
func NewHTTPHandler(router http.Handler, settings config.ServerSettings) http.Handler {
	settings.ApplyDefaults()

	handler := newCORS(settings.CORSAllowedOrigins).Handler(router)
	if settings.EnableGzip {
		handler = gzhttp.GzipHandler(handler)
	}
	return handler
}

func newCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader, "Content-Encoding"},
	})
}
