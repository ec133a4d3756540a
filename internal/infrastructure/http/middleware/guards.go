package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http/response"
)

const unsupportedMediaTypeMessage = "Unsupported media type. Please use 'application/json'"

// RequireJSON rejects request bodies that are not application/json with a
// JSON 415. Requests without a body pass through, as with chi's
// AllowContentType.
func RequireJSON() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			mediaType, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
			if strings.ToLower(strings.TrimSpace(mediaType)) != "application/json" {
				response.Error(w, http.StatusUnsupportedMediaType, unsupportedMediaTypeMessage)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Recoverer turns a handler panic into the generic JSON 500 and logs the
// stack. http.ErrAbortHandler is re-raised so net/http can abort the
// connection.
func Recoverer(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.ErrorContext(r.Context(), "Recovered from panic",
					slog.String("panic", fmt.Sprint(rvr)),
					slog.String("stack", string(debug.Stack())),
				)

				// upgraded connections cannot take a response
				if r.Header.Get("Connection") != "Upgrade" {
					response.InternalError(w)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
