package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/inmobiliaria-premium/internal/conversation"
	"github.com/wolfman30/inmobiliaria-premium/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/inmobiliaria-premium/internal/http/middleware"
	"github.com/wolfman30/inmobiliaria-premium/internal/leads"
	"github.com/wolfman30/inmobiliaria-premium/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	LeadsHandler        *leads.Handler
	ConversationHandler *conversation.Handler
	AdminLogin          *handlers.AdminLoginHandler
	AdminAuthSecret     string
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// ChatLimiter throttles chat writes per client IP. Nil disables it.
	ChatLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.AdminLogin != nil {
			api.Post("/admin/login", cfg.AdminLogin.Login)
			api.Post("/admin/logout", cfg.AdminLogin.Logout)
		}

		if cfg.LeadsHandler != nil {
			api.Group(func(admin chi.Router) {
				admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
				admin.Mount("/leads", cfg.LeadsHandler.Routes())
			})
		}

		if cfg.ConversationHandler != nil {
			api.Group(func(chat chi.Router) {
				if cfg.ChatLimiter != nil {
					chat.Use(writesOnly(httpmiddleware.RateLimit(cfg.ChatLimiter)))
				}
				chat.Mount("/chat/sessions", cfg.ConversationHandler.Routes())
			})
		}
	})

	return r
}

// writesOnly applies mw to every method except GET and HEAD.
func writesOnly(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
