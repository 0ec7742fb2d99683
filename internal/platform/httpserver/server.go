package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	mailservice "beacon/contexts/delivery/mail-service"
	webhookservice "beacon/contexts/delivery/webhook-service"

	_ "beacon/internal/platform/httpserver/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	mail     mailservice.Module
	webhooks webhookservice.Module
}

func New(
	mail mailservice.Module,
	webhooks webhookservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		mail:     mail,
		webhooks: webhooks,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/mail/messages", s.handleEnqueueMessage)
	s.mux.HandleFunc("GET /v1/mail/messages", s.handleListMessages)
	s.mux.HandleFunc("GET /v1/mail/messages/{message_id}", s.handleGetMessage)

	s.mux.HandleFunc("POST /v1/tenants/{tenant_id}/webhooks", s.handleRegisterWebhook)
	s.mux.HandleFunc("GET /v1/tenants/{tenant_id}/webhooks", s.handleListWebhooks)
	s.mux.HandleFunc("GET /v1/tenants/{tenant_id}/webhooks/{webhook_id}", s.handleGetWebhook)
	s.mux.HandleFunc("POST /v1/tenants/{tenant_id}/webhooks/{webhook_id}/rotate-secret", s.handleRotateWebhookSecret)
	s.mux.HandleFunc("POST /v1/tenants/{tenant_id}/webhooks/{webhook_id}/status", s.handleSetWebhookStatus)
	s.mux.HandleFunc("DELETE /v1/tenants/{tenant_id}/webhooks/{webhook_id}", s.handleRemoveWebhook)
	s.mux.HandleFunc("POST /v1/tenants/{tenant_id}/events", s.handleTriggerEvent)

	s.mux.HandleFunc("POST /v1/inbound/{subscription_id}", s.handleInboundWebhook)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
