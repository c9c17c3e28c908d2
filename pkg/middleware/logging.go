package middleware

import (
	"fmt"
	"net/http"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"github.com/vfg2006/ads-metrics-api/pkg/apiErrors"
	"github.com/vfg2006/ads-metrics-api/pkg/log"
	"github.com/vfg2006/ads-metrics-api/pkg/metrics"
)

const (
	slowRequestThreshold = 500 * time.Millisecond
	maxRequestIDLength   = 64
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// requestIDFromHeader só aceita IDs curtos e sem caracteres especiais; caso
// contrário devolve vazio para que um UUID seja gerado
func requestIDFromHeader(r *http.Request) string {
	id := r.Header.Get(log.RequestIDHeader)
	if len(id) > maxRequestIDLength || !requestIDPattern.MatchString(id) {
		return ""
	}
	return id
}

// LoggingMiddleware registra cada requisição HTTP e propaga o ID de correlação
func LoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Reaproveita o X-Request-ID do cliente quando válido
			ctx, correlationID := log.WithCorrelationID(r.Context(), requestIDFromHeader(r))
			ctx = metrics.WithRouteLabel(ctx)
			r = r.WithContext(ctx)
			w.Header().Set(log.RequestIDHeader, correlationID)

			lrw := newLoggingResponseWriter(w)
			startTime := time.Now()

			log.ForContext(ctx).WithFields(log.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"query":       r.URL.RawQuery,
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.UserAgent(),
			}).Debug("Requisição iniciada")

			next.ServeHTTP(lrw, r)

			responseTime := time.Since(startTime)
			metrics.ResponseTime.
				WithLabelValues(r.Method, metrics.RouteFromContext(ctx), strconv.Itoa(lrw.statusCode)).
				Observe(responseTime.Seconds())

			logFields := log.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"duration_ms": responseTime.Milliseconds(),
				"status_code": lrw.statusCode,
			}
			logger := log.ForContext(ctx).WithFields(logFields)

			msg := fmt.Sprintf("Requisição finalizada em %s", formatDuration(responseTime))
			switch {
			case lrw.statusCode >= 500:
				logger.Error(msg)
			case lrw.statusCode >= 400:
				logger.Warn(msg)
			default:
				logger.Info(msg)
			}

			if responseTime > slowRequestThreshold {
				logger.Warnf("Requisição lenta: %s", responseTime)
			}
		})
	}
}

// formatDuration formata a duração de forma humana
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%d µs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2f s", d.Seconds())
}

// loggingResponseWriter é um wrapper para http.ResponseWriter para capturar o status code
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newLoggingResponseWriter(w http.ResponseWriter) *loggingResponseWriter {
	return &loggingResponseWriter{w, http.StatusOK}
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// LogPanicMiddleware captura panics, registra o stack trace e responde 500
func LogPanicMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					stack := make([]byte, 4096)
					stackSize := runtime.Stack(stack, false)

					log.ForContext(r.Context()).WithFields(log.Fields{
						"panic_error": err,
						"method":      r.Method,
						"path":        r.URL.Path,
						"stack_trace": string(stack[:stackSize]),
					}).Error("Erro não tratado na aplicação")

					apiErrors.WriteError(w, apiErrors.ErrInternalServer, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
