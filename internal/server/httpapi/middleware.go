package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/auth"
	"github.com/dmitrijs2005/hrkeeper/internal/server/services"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const (
	principalKey ctxKey = "principal"
	viaCookieKey ctxKey = "viaCookie"
	bearerPrefix        = "Bearer "
	deviceCookie        = "trustedDevice"
	deviceHeader        = "X-Device-Fingerprint"
)

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// sessionToken finds the token in the Authorization header, the X-Session-ID
// header or the session cookie, in that order.
func sessionToken(r *http.Request) (token string, viaCookie bool) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix)), false
	}
	if h := r.Header.Get(common.SessionHeaderName); h != "" {
		return h, false
	}
	if c, err := r.Cookie(common.SessionCookieName); err == nil {
		return c.Value, true
	}
	return "", false
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, viaCookie := sessionToken(r)
		if token == "" {
			fail(w, r, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		p, err := s.svc.Auth.Authenticate(r.Context(), token)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), principalKey, p)
		ctx = context.WithValue(ctx, viaCookieKey, viaCookie)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// csrf guards unsafe methods of cookie-authenticated requests. Header
// tokens cannot be sent cross-site, so those requests pass.
func (s *Server) csrf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if viaCookie, _ := r.Context().Value(viaCookieKey).(bool); !viaCookie {
			next.ServeHTTP(w, r)
			return
		}
		p := principalFrom(r.Context())
		if p == nil || !s.svc.Auth.VerifyCSRF(p.Session.ID, r.Header.Get(common.CSRFHeaderName)) {
			fail(w, r, http.StatusForbidden, "csrf_failed", "missing or invalid CSRF token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requirePermission(perm auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := principalFrom(r.Context())
			if p == nil {
				fail(w, r, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			if !auth.Can(p.User.Role, perm) {
				fail(w, r, http.StatusForbidden, "forbidden", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func principalFrom(ctx context.Context) *services.Principal {
	p, _ := ctx.Value(principalKey).(*services.Principal)
	return p
}

// clientInfo collects what the auth service needs about the caller. The
// trusted-device cookie wins over a client-supplied fingerprint header.
func clientInfo(r *http.Request) services.ClientInfo {
	ci := services.ClientInfo{
		IP:                hostOnly(r.RemoteAddr),
		UserAgent:         r.UserAgent(),
		DeviceFingerprint: r.Header.Get(deviceHeader),
	}
	if c, err := r.Cookie(deviceCookie); err == nil && c.Value != "" {
		ci.DeviceFingerprint = c.Value
	}
	return ci
}
