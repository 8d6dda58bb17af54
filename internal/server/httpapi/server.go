// Package httpapi exposes the hrkeeper services as a REST/JSON API.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/logging"
	"github.com/dmitrijs2005/hrkeeper/internal/server/auth"
	"github.com/dmitrijs2005/hrkeeper/internal/server/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const shutdownTimeout = 10 * time.Second

// maxUploadSize bounds spreadsheet imports.
const maxUploadSize = 10 << 20

type Server struct {
	address          string
	svc              Services
	logger           logging.Logger
	allowedOrigins   []string
	cookieSecure     bool
	sessionTTL       time.Duration
	trustedDeviceTTL time.Duration
	trustedProxies   []netip.Prefix
}

func NewServer(cfg *config.Config, l logging.Logger, svc Services) *Server {
	return &Server{
		address:          cfg.HTTPAddr,
		svc:              svc,
		logger:           l.With("module", "http_server"),
		allowedOrigins:   cfg.CORSAllowedOrigins,
		cookieSecure:     cfg.CookieSecure,
		sessionTTL:       cfg.SessionTTL,
		trustedDeviceTTL: cfg.TrustedDeviceTTL,
		trustedProxies:   parseProxies(cfg.TrustedProxies),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.realIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Session-ID", "X-Device-Fingerprint"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/verify-mfa", s.handleVerifyMFA)
			r.Post("/change-password", s.handleChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(s.authenticate, s.csrf)
				r.Post("/logout", s.handleLogout)
				r.Get("/session", s.handleSession)
				r.Get("/mfa/status", s.handleMFAStatus)
				r.Post("/mfa/setup", s.handleMFASetup)
				r.Post("/mfa/verify", s.handleMFAEnable)
				r.Post("/mfa/disable", s.handleMFADisable)
				r.Post("/mfa/regenerate-backup-codes", s.handleRegenerateBackupCodes)
				r.Get("/mfa/trusted-devices", s.handleListTrustedDevices)
				r.Delete("/mfa/trusted-devices/{deviceID}", s.handleRevokeTrustedDevice)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate, s.csrf)
			s.employeeRoutes(r)
			s.timecardRoutes(r)
			s.payrollRoutes(r)
			s.leaveRoutes(r)
			s.benefitRoutes(r)
			s.recruitingRoutes(r)

			r.Route("/users", func(r chi.Router) {
				r.Use(requirePermission(auth.UsersManage))
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
			})
		})
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
