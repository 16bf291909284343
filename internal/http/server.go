package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"castella/internal/auth"
	"castella/internal/backoffice"
	"castella/internal/config"
	"castella/internal/gateway"
	"castella/internal/logging"
	"castella/internal/storage"
)

// ServiceFactory builds the resource views for one request. tokens is that request's
// session store.
type ServiceFactory func(tokens gateway.TokenSource) (*backoffice.Service, error)

// Deps are the collaborators the console needs.
type Deps struct {
	Storage  storage.Provider
	JWT      *auth.JWTManager
	Services ServiceFactory
	// Health reports whether the storage backend is reachable. Optional.
	Health func(ctx context.Context) error
	Log    *zap.Logger
}

type Server struct {
	cfg          config.Config
	router       chi.Router
	storage      storage.Provider
	jwt          *auth.JWTManager
	services     ServiceFactory
	health       func(ctx context.Context) error
	guard        auth.Guard
	inflight     *gateway.Inflight
	limiter      *rateLimiter
	secureCookie bool
	log          *zap.Logger
	httpServer   *http.Server
}

func NewServer(cfg config.Config, deps Deps) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	origin := strings.TrimSuffix(cfg.FrontendURL, "/")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	server := &Server{
		cfg:          cfg,
		router:       router,
		storage:      deps.Storage,
		jwt:          deps.JWT,
		services:     deps.Services,
		health:       deps.Health,
		guard:        auth.NewGuard(auth.LoginPath, "/logout", "/healthz"),
		inflight:     gateway.NewInflight(),
		limiter:      newRateLimiter(cfg.RateLimitRPS),
		secureCookie: strings.HasPrefix(strings.ToLower(cfg.FrontendURL), "https://"),
		log:          logging.OrNop(deps.Log),
	}

	router.Use(server.clientMiddleware)
	router.Use(server.rateLimitMiddleware())
	router.Use(server.sessionMiddleware)
	router.Use(server.guardMiddleware)
	server.registerRoutes()
	return server
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/login", s.handleLoginPage)
	s.router.Post("/login", s.handleLogin)
	s.router.Post("/logout", s.handleLogout)

	s.router.Get("/", redirectTo("/dashboard"))
	s.router.Get("/session", s.handleSession)
	s.router.Get("/menu", s.handleMenu)
	s.router.Get("/dashboard", s.handleDashboard)

	s.router.Get("/orders", s.handleOrders)
	s.router.Route("/order/{orderID}", func(r chi.Router) {
		r.Get("/", s.handleOrder)
		r.Put("/technician", s.handleOrderTechnician)
		r.Put("/status", s.handleOrderStatus)
		r.Put("/schedule", s.handleOrderSchedule)
		r.Put("/finalize", s.handleOrderFinalize)
	})

	s.router.Get("/mobile-orders", s.handleMobileOrders)
	s.router.Put("/mobile-orders/{orderID}/assignment", s.handleMobileAssignment)
	s.router.Get("/technicians", s.handleTechnicians)

	s.router.Get("/maintenance", s.handleMaintenanceList)
	s.router.Get("/maintenance/{maintenanceID}", s.handleMaintenance)

	s.router.Get("/guarantees", s.handleGuarantees)
	s.router.Put("/guarantees/{guaranteeID}/technician", s.handleGuaranteeTechnician)

	s.router.Get("/ratings", s.handleTechnicians)
	s.router.Get("/ratings/{technicianID}", s.handleRatings)

	s.router.Route("/users", func(r chi.Router) {
		r.Get("/", s.handleUsers)
		r.Post("/", s.handleCreateUser)
		r.Put("/{userID}", s.handleUpdateUser)
		r.Delete("/{userID}", s.handleDeleteUser)
	})
	s.router.Get("/roles", s.handleRoles)

	s.router.Route("/clients", func(r chi.Router) {
		r.Get("/", s.handleClients)
		r.Post("/", s.handleCreateClient)
		r.Put("/{clientID}", s.handleUpdateClient)
		r.Delete("/{clientID}", s.handleDeleteClient)
	})

	s.router.NotFound(redirectTo("/dashboard"))
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	if s.health != nil {
		if err := s.health(ctx); err != nil {
			s.log.Warn("storage health check failed", zap.Error(err))
			status = "degraded"
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func redirectTo(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path, http.StatusFound)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeViewError maps a failed view call onto a response. Backend answers keep their
// status and message; the failure stays with this request.
func (s *Server) writeViewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, backoffice.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, backoffice.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, backoffice.ErrAuthentication):
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": authMessage(err)})
	case gateway.Superseded(r.Context()):
		s.writeError(w, http.StatusConflict, gateway.ErrSuperseded)
	case gateway.StatusCode(err) != 0:
		status := gateway.StatusCode(err)
		if gateway.IsUnauthorized(err) {
			s.log.Warn("backend rejected the session token",
				zap.String("client_id", auth.ClientIDFromContext(r.Context())),
				zap.String("path", r.URL.Path),
			)
		}
		msg := gateway.Message(err)
		if msg == "" {
			msg = http.StatusText(status)
		}
		s.writeJSON(w, status, map[string]string{"error": msg})
	default:
		s.log.Error("backend request failed", zap.String("path", r.URL.Path), zap.Error(err))
		s.writeError(w, http.StatusBadGateway, fmt.Errorf("backend unavailable"))
	}
}

func authMessage(err error) string {
	var authErr *backoffice.AuthenticationError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	return backoffice.ErrAuthentication.Error()
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
