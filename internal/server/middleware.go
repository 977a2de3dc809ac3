package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"changemakers/internal"
	"changemakers/internal/identity"
	"changemakers/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeySession     contextKey = "session"
	contextKeyAccessToken contextKey = "access_token"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// sessionRegistry maps a verified token to the identity.Session created the
// first time that token was seen. Entries live until the token expires. A
// logged out token stays behind as a revoked entry so it cannot open a new
// session before it expires.
type sessionRegistry struct {
	mu        sync.Mutex
	entries   map[string]*sessionEntry
	ttl       time.Duration
	now       func() time.Time
	lastSwept time.Time
}

type sessionEntry struct {
	session *identity.Session
	expires time.Time
	revoked bool
}

const sessionSweepInterval = time.Minute

// newSessionRegistry uses ttl for tokens that carry no expiry claim.
func newSessionRegistry(ttl time.Duration) *sessionRegistry {
	return &sessionRegistry{
		entries: make(map[string]*sessionEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (r *sessionRegistry) get(key string, expires time.Time, create func() *identity.Session) (*identity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	if entry, ok := r.entries[key]; ok && now.Before(entry.expires) {
		if entry.revoked {
			return nil, types.ErrSessionInvalid
		}
		if entry.session.Valid() {
			return entry.session, nil
		}
	}

	if expires.IsZero() {
		expires = now.Add(r.ttl)
	}

	sess := create()
	r.entries[key] = &sessionEntry{session: sess, expires: expires}
	return sess, nil
}

func (r *sessionRegistry) invalidate(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok {
		entry = &sessionEntry{expires: r.now().Add(r.ttl)}
		r.entries[key] = entry
	}

	if entry.session != nil {
		entry.session.Invalidate()
		entry.session = nil
	}
	entry.revoked = true
}

func (r *sessionRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// sweep drops expired entries at most once per sessionSweepInterval.
func (r *sessionRegistry) sweep(now time.Time) {
	if now.Sub(r.lastSwept) < sessionSweepInterval {
		return
	}
	r.lastSwept = now

	for key, entry := range r.entries {
		if !now.Before(entry.expires) {
			delete(r.entries, key)
		}
	}
}

// RequireAuth verifies the access token cookie and attaches the caller's
// session to the request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Get the cookie
		cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
		if err != nil {
			s.logger.WithError(err).Debug("no access token cookie found")
			s.writeError(w, types.ErrSessionInvalid)
			return
		}

		// 2. Decrypt the token
		var accessToken string
		err = s.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value, &accessToken)
		if err != nil {
			s.logger.WithError(err).Error("failed to decrypt access token")
			s.writeError(w, types.ErrSessionInvalid)
			return
		}

		// 3. Fetch JWK and verify JWT
		set, err := s.jwksCache.Lookup(r.Context(), s.jwksURL)
		if err != nil {
			s.logger.WithError(err).Error("failed to fetch JWKS")
			s.writeError(w, err)
			return
		}

		token, err := jwt.Parse(
			[]byte(accessToken),
			jwt.WithKeySet(set),
			jwt.WithValidate(true),
		)
		if err != nil {
			s.logger.WithError(err).Info("failed to parse JWT")
			s.writeError(w, types.ErrSessionInvalid)
			return
		}

		// 4. Extract user info from claims
		accountID, ok := token.Subject()
		if !ok || accountID == "" {
			s.logger.Error("no account ID in JWT subject claim")
			s.writeError(w, types.ErrSessionInvalid)
			return
		}

		var email string
		if err := token.Get("email", &email); err != nil {
			s.logger.WithError(err).Debug("no email claim in JWT")
		}

		sessionKey, ok := token.JwtID()
		if !ok || sessionKey == "" {
			sessionKey = accountID
		}

		// 5. Add the session to context
		expires, _ := token.Expiration()
		sess, err := s.sessions.get(sessionKey, expires, func() *identity.Session {
			return identity.NewSession(sessionKey, accountID, email, s.profiles)
		})
		if err != nil {
			s.logger.WithField("account_id", accountID).Info("token was signed out")
			s.writeError(w, err)
			return
		}

		s.logger.WithFields(logrus.Fields{
			"account_id": accountID,
			"email":      email,
		}).Debug("authenticated user")

		ctx := context.WithValue(r.Context(), contextKeySession, sess)
		ctx = context.WithValue(ctx, contextKeyAccessToken, accessToken)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
