package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	// AllowedOrigins is the list of origins permitted to make cross-origin
	// requests. ["*"] allows any origin.
	AllowedOrigins []string

	// AllowCredentials indicates whether the browser may include cookies
	// and auth headers. Ignored for wildcard origins.
	AllowCredentials bool
}

var (
	corsAllowMethods = strings.Join([]string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	}, ", ")

	corsAllowHeaders = strings.Join([]string{
		echo.HeaderContentType,
		echo.HeaderAuthorization,
		HeaderRequestID,
	}, ", ")

	corsExposeHeaders = strings.Join([]string{
		HeaderRequestID,
		HeaderRateLimitLimit,
		HeaderRateLimitRemaining,
		echo.HeaderRetryAfter,
		echo.HeaderContentDisposition,
	}, ", ")
)

// CORS returns middleware that handles Cross-Origin Resource Sharing headers
// so browser-based tools hosted elsewhere can query the calendar API.
func CORS(cfg CORSConfig) echo.MiddlewareFunc {
	allowAll := false
	originSet := make(map[string]bool)
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			allowAll = true
		}
		originSet[o] = true
	}

	// SECURITY: never combine a wildcard origin with credentials.
	if allowAll && cfg.AllowCredentials {
		slog.Warn("CORS misconfiguration: wildcard origin with credentials, credentials disabled")
		cfg.AllowCredentials = false
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			origin := req.Header.Get(echo.HeaderOrigin)

			// No Origin header means same-origin or non-browser client.
			if origin == "" {
				return next(c)
			}
			if !allowAll && !originSet[origin] {
				// The browser blocks the response client side.
				return next(c)
			}

			res.Header().Set(echo.HeaderAccessControlAllowOrigin, origin)
			res.Header().Add(echo.HeaderVary, echo.HeaderOrigin)
			if cfg.AllowCredentials {
				res.Header().Set(echo.HeaderAccessControlAllowCredentials, "true")
			}

			if req.Method == http.MethodOptions {
				res.Header().Set(echo.HeaderAccessControlAllowMethods, corsAllowMethods)
				res.Header().Set(echo.HeaderAccessControlAllowHeaders, corsAllowHeaders)
				res.Header().Set(echo.HeaderAccessControlMaxAge, "3600")
				return c.NoContent(http.StatusNoContent)
			}

			res.Header().Set(echo.HeaderAccessControlExposeHeaders, corsExposeHeaders)
			return next(c)
		}
	}
}
