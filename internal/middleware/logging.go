package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnshRaj112/journal-backend/pkg/clientip"
)

// RequestLogger logs one line per request. Server errors are logged at error level.
func RequestLogger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				fields := []interface{}{
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"bytes", ww.BytesWritten(),
					"latency", time.Since(start),
					"ip", clientip.RealClientIP(r),
					"request_id", chimw.GetReqID(r.Context()),
				}
				switch {
				case status >= 500:
					log.Errorw("request", fields...)
				case status >= 400:
					log.Warnw("request", fields...)
				default:
					log.Infow("request", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
