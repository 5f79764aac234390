package middlewares

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"shortener/internal/http/httputils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	if r.statusCode == 0 {
		r.statusCode = statusCode
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	size, err := r.ResponseWriter.Write(b)
	r.size += size
	return size, err
}

// MiddlewareLogging logs every request, tags it with an X-Request-ID and
// turns a handler panic into a 500. The request-scoped logger is available to
// handlers through zerolog.Ctx.
func MiddlewareLogging(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(httputils.HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(httputils.HeaderRequestID, requestID)

			reqLog := log.With().Str("request_id", requestID).Logger()
			r = r.WithContext(reqLog.WithContext(r.Context()))
			recorder := &responseRecorder{ResponseWriter: w}

			// Логируем начало запроса
			reqLog.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("host", r.Host).
				Str("ip", r.RemoteAddr).
				Msg("request started")

			defer func() {
				if p := recover(); p != nil {
					reqLog.Error().
						Str("panic", fmt.Sprintf("%v", p)).
						Str("stack", string(debug.Stack())).
						Msg("request panic")
					if recorder.statusCode == 0 {
						httputils.WriteJSONError(recorder, http.StatusInternalServerError, "Internal server error")
					}
				}

				status := recorder.statusCode
				if status == 0 {
					status = http.StatusOK
				}

				var logEvent *zerolog.Event
				switch {
				case status >= http.StatusInternalServerError:
					logEvent = reqLog.Error()
				case status >= http.StatusBadRequest:
					logEvent = reqLog.Warn()
				default:
					logEvent = reqLog.Info()
				}

				logEvent.
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", status).
					Dur("duration", time.Since(start)).
					Int("bytes", recorder.size).
					Msg("request completed")
			}()

			next.ServeHTTP(recorder, r)
		})
	}
}
