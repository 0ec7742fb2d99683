package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	maildomainerrors "beacon/contexts/delivery/mail-service/domain/errors"
	mailhttp "beacon/contexts/delivery/mail-service/transport/http"
)

func (s *Server) handleEnqueueMessage(w http.ResponseWriter, r *http.Request) {
	var req mailhttp.EnqueueMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMailError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.mail.Handler.EnqueueHandler(r.Context(), req)
	if err != nil {
		writeMailDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	messageID := r.PathValue("message_id")
	resp, err := s.mail.Handler.GetMessageHandler(r.Context(), messageID)
	if err != nil {
		writeMailDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if limitRaw := query.Get("limit"); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeMailError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}

	resp, err := s.mail.Handler.ListMessagesHandler(r.Context(), query.Get("status"), limit)
	if err != nil {
		writeMailDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeMailDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, maildomainerrors.ErrMessageNotFound):
		writeMailError(w, http.StatusNotFound, "message_not_found", err.Error())
	case errors.Is(err, maildomainerrors.ErrMessageExists):
		writeMailError(w, http.StatusConflict, "message_exists", err.Error())
	case errors.Is(err, maildomainerrors.ErrInvalidMessageInput):
		writeMailError(w, http.StatusBadRequest, "invalid_message_input", err.Error())
	case errors.Is(err, maildomainerrors.ErrInvalidStatusFilter):
		writeMailError(w, http.StatusBadRequest, "invalid_status_filter", err.Error())
	default:
		writeMailError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeMailError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, mailhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
