package server

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit caps requests per client IP. Defaults to 10 a minute.
func (s *Service) RateLimit(limit int64, period time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = time.Minute
	}

	instance := limiter.New(memory.NewStore(), limiter.Rate{Period: period, Limit: limit})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			lctx, err := instance.Get(r.Context(), key)
			if err != nil {
				s.logger.WithError(err).Error("rate limiter lookup failed")
				s.writeError(w, err)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", lctx.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", lctx.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", lctx.Reset))

			if lctx.Reached {
				s.logger.WithField("client_ip", key).Info("rate limit reached")
				s.writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests, please try again later"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
