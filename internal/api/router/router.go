package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/omnidesk/omnidesk-core/internal/channels"
	"github.com/omnidesk/omnidesk-core/internal/conversation"
	httpmiddleware "github.com/omnidesk/omnidesk-core/internal/http/middleware"
	"github.com/omnidesk/omnidesk-core/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	ConversationHandler *conversation.Handler
	ChannelHandler      *channels.Handler
	MetricsHandler      http.Handler
	OperatorJWTSecret   string
	CORSAllowedOrigins  []string

	// Inbound webhook throttling. Zero disables the limiter.
	InboundRateLimit float64
	InboundBurst     int
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health checks, metrics).
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Channel boundary routes. Adapters authenticate out of band and scope
	// every request with X-Company-Id.
	if cfg.ChannelHandler != nil {
		r.Route("/channels/{channel}", func(ch chi.Router) {
			ch.Use(httpmiddleware.CompanyScope)
			if cfg.InboundRateLimit > 0 {
				ch.Use(httpmiddleware.InboundRateLimit(cfg.InboundRateLimit, cfg.InboundBurst))
			}
			ch.Post("/inbound", cfg.ChannelHandler.Inbound)
			ch.Post("/agent-message", cfg.ChannelHandler.AgentMessage)
		})
	}

	// Operator console routes (protected by JWT).
	if cfg.ConversationHandler != nil {
		r.Route("/conversations", func(ops chi.Router) {
			ops.Use(httpmiddleware.OperatorJWT(cfg.OperatorJWTSecret))
			ops.Get("/active", cfg.ConversationHandler.ListActive)
			ops.Get("/{id}", cfg.ConversationHandler.GetConversation)
			ops.Post("/{id}/takeover", cfg.ConversationHandler.Takeover)
			ops.Post("/{id}/operator-message", cfg.ConversationHandler.OperatorMessage)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
