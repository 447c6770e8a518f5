package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const adminRealm = `Basic realm="qa-dashboard admin"`

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// requireAdmin rejects requests that do not carry valid admin basic-auth credentials.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if ok {
			valid, err := h.auth.Verify(r.Context(), username, password)
			if err != nil {
				h.logger.Error("admin verification failed", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
				return
			}
			if valid {
				next.ServeHTTP(w, r)
				return
			}
			h.logger.Warn("rejected admin credentials", zap.String("username", username))
		}

		w.Header().Set("WWW-Authenticate", adminRealm)
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "admin credentials required")
	})
}
