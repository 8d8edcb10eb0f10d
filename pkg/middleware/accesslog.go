package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/HMasataka/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += int64(n)
	return n, err
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// AccessLog は method と remote をリクエストの context に載せて next に渡す
// logger は logging.NewHandler で包んだハンドラーを持つ前提で、context の値はそこで出力される
func AccessLog(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			ctx := logging.WithValue(r.Context(), "method", r.Method)
			ctx = logging.WithValue(ctx, "remote", r.RemoteAddr)
			r = r.WithContext(ctx)

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			attrs := []any{
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int64("bytes", rec.bytes),
				slog.Duration("duration", time.Since(start)),
			}

			if logging.HasLoggingContext(ctx) {
				logger.InfoContext(ctx, "request served", attrs...)
				return
			}

			logger.Info("request served", append(attrs, slog.String("method", r.Method), slog.String("remote", r.RemoteAddr))...)
		})
	}
}
