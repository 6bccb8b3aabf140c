package api

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pathakanu/muditam/internal/otp"
)

// requestLogger logs every request with the given logger, named name.
func requestLogger(l *zap.SugaredLogger, name string) func(next http.Handler) http.Handler {
	logger := zap.New(l.Desugar().Core(), zap.AddCallerSkip(1)).Sugar().Named(name)
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			reqID := uuid.NewString()
			w.Header().Set("X-Request-Id", reqID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t1 := time.Now()
			next.ServeHTTP(ww, r)

			logger.Infow("request",
				"status", ww.Status(),
				"method", r.Method,
				"url", r.URL.String(),
				"reqIp", r.RemoteAddr,
				"size", ww.BytesWritten(),
				"latency", time.Since(t1).String(),
				"userAgent", r.UserAgent(),
				"reqId", reqID,
			)
		}
		return http.HandlerFunc(fn)
	}
}

// rateLimit rejects clients that exceed limiter, keyed by remote IP.
func rateLimit(limiter *otp.Limiter) func(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(limiter.RetryAfter().Round(time.Second) / time.Second))
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", retryAfter)
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, otpResponse{Message: "too many requests, please try again later"})
				return
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
