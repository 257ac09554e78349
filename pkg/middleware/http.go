package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type langKey struct{}

// RequestLogger writes one access log line per request.
func RequestLogger(log logger.ZapLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}

// Language stores the Accept-Language header for response localization.
func Language(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lang := r.Header.Get("Accept-Language"); lang != "" {
			r = r.WithContext(context.WithValue(r.Context(), langKey{}, lang))
		}
		next.ServeHTTP(w, r)
	})
}

func GetLanguage(ctx context.Context) string {
	lang, _ := ctx.Value(langKey{}).(string)
	return lang
}
