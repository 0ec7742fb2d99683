package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	webhookdomainerrors "beacon/contexts/delivery/webhook-service/domain/errors"
	webhookhttp "beacon/contexts/delivery/webhook-service/transport/http"
)

// Inbound bodies are read fully before verification; the signature covers
// the raw bytes, so the cap has to be generous but bounded.
const maxInboundBodyBytes = 1 << 20

func (s *Server) handleRegisterWebhook(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")

	var req webhookhttp.RegisterWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeWebhookError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.webhooks.Handler.RegisterHandler(r.Context(), tenantID, req)
	if err != nil {
		writeWebhookDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetWebhook(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")
	webhookID := r.PathValue("webhook_id")

	resp, err := s.webhooks.Handler.GetHandler(r.Context(), tenantID, webhookID)
	if err != nil {
		writeWebhookDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListWebhooks(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")
	resp, err := s.webhooks.Handler.ListHandler(r.Context(), tenantID)
	if err != nil {
		writeWebhookDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRotateWebhookSecret(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")
	webhookID := r.PathValue("webhook_id")

	resp, err := s.webhooks.Handler.RotateSecretHandler(r.Context(), tenantID, webhookID)
	if err != nil {
		writeWebhookDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetWebhookStatus(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")
	webhookID := r.PathValue("webhook_id")

	var req webhookhttp.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeWebhookError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.webhooks.Handler.SetStatusHandler(r.Context(), tenantID, webhookID, req)
	if err != nil {
		writeWebhookDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveWebhook(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")
	webhookID := r.PathValue("webhook_id")

	if err := s.webhooks.Handler.RemoveHandler(r.Context(), tenantID, webhookID); err != nil {
		writeWebhookDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTriggerEvent(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")

	var req webhookhttp.TriggerEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeWebhookError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp := s.webhooks.Handler.TriggerHandler(r.Context(), tenantID, req)
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleInboundWebhook(w http.ResponseWriter, r *http.Request) {
	subscriptionID := r.PathValue("subscription_id")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInboundBodyBytes))
	if err != nil {
		writeWebhookError(w, http.StatusBadRequest, "invalid_body", "request body could not be read")
		return
	}

	valid, err := s.webhooks.Handler.InboundHandler(
		r.Context(),
		subscriptionID,
		body,
		r.Header.Get("X-Beacon-Signature"),
	)
	if err != nil {
		writeWebhookDomainError(w, err)
		return
	}
	if !valid {
		writeWebhookError(w, http.StatusUnauthorized, "invalid_signature", "signature verification failed")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"accepted": true})
}

func writeWebhookDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, webhookdomainerrors.ErrSubscriptionNotFound):
		writeWebhookError(w, http.StatusNotFound, "webhook_not_found", err.Error())
	case errors.Is(err, webhookdomainerrors.ErrSubscriptionExists):
		writeWebhookError(w, http.StatusConflict, "webhook_exists", err.Error())
	case errors.Is(err, webhookdomainerrors.ErrInvalidSubscriptionInput):
		writeWebhookError(w, http.StatusBadRequest, "invalid_webhook_input", err.Error())
	case errors.Is(err, webhookdomainerrors.ErrInvalidEventName):
		writeWebhookError(w, http.StatusBadRequest, "invalid_event_name", err.Error())
	default:
		writeWebhookError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeWebhookError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, webhookhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
