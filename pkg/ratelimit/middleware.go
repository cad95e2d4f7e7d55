package ratelimit

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sunday4k/sunday4k/pkg/logger"
)

// KeyFunc extracts the identifier to limit on. An empty key skips limiting.
type KeyFunc func(r *http.Request) (string, error)

// DeniedHandler writes the response for a rejected request.
type DeniedHandler func(w http.ResponseWriter, r *http.Request, res Result)

type middlewareOptions struct {
	logger *slog.Logger
	denied DeniedHandler
	now    func() time.Time
	scope  string
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareOptions)

// WithLogger logs limiter and key extraction failures.
func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(o *middlewareOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDeniedHandler replaces the default plain-text 429 response.
func WithDeniedHandler(h DeniedHandler) MiddlewareOption {
	return func(o *middlewareOptions) {
		if h != nil {
			o.denied = h
		}
	}
}

// WithScope prefixes every key so several routes can share one limiter.
func WithScope(scope string) MiddlewareOption {
	return func(o *middlewareOptions) {
		o.scope = scope
	}
}

// Middleware limits requests by the key returned from keyFn. It sets the
// X-RateLimit-* headers on every limited request and Retry-After on denial.
func Middleware(l Limiter, keyFn KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	o := middlewareOptions{
		logger: logger.NewNope(),
		denied: defaultDenied,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := keyFn(r)
			if err != nil {
				o.logger.DebugContext(r.Context(), "rate limit key not found", logger.Error(err))
			}
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if o.scope != "" {
				key = o.scope + ":" + key
			}

			res, err := l.Allow(r.Context(), key)
			if err != nil {
				o.logger.ErrorContext(r.Context(), "rate limiter failed",
					slog.String("key", key),
					logger.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				secs := int(math.Ceil(res.RetryAfter(o.now()).Seconds()))
				h.Set("Retry-After", strconv.Itoa(max(secs, 1)))
				o.denied(w, r, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func defaultDenied(w http.ResponseWriter, _ *http.Request, _ Result) {
	http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
}

// ByIP keys on the client IP: the first X-Forwarded-For entry, then X-Real-IP,
// then the connection's remote address.
func ByIP(r *http.Request) (string, error) {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip, nil
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip, nil
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr, nil
	}
	return host, nil
}

// maxKeyBody bounds how much of a request body ByJSONField reads.
const maxKeyBody = 1 << 20

// ByJSONField keys on a top-level string field of a JSON body, lowercased.
// The body is restored for the next handler.
func ByJSONField(field string) KeyFunc {
	return func(r *http.Request) (string, error) {
		if r.Body == nil {
			return "", ErrNoKey
		}

		data, err := io.ReadAll(io.LimitReader(r.Body, maxKeyBody))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(data))
		if err != nil {
			return "", errors.Join(ErrNoKey, err)
		}

		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			return "", errors.Join(ErrNoKey, err)
		}

		v, _ := payload[field].(string)
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			return "", ErrNoKey
		}
		return v, nil
	}
}
