package http

import "encoding/json"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterWebhookRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

// WebhookCreatedResponse is the only list/get/create shape that carries the
// secret; it is returned exactly once on registration and on rotation.
type WebhookCreatedResponse struct {
	ID       string   `json:"id"`
	Secret   string   `json:"secret"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	IsActive bool     `json:"is_active"`
}

type WebhookDTO struct {
	ID              string   `json:"id"`
	URL             string   `json:"url"`
	Events          []string `json:"events"`
	IsActive        bool     `json:"is_active"`
	FailureCount    int      `json:"failure_count"`
	LastTriggeredAt string   `json:"last_triggered_at,omitempty"`
}

type ListWebhooksResponse struct {
	Webhooks []WebhookDTO `json:"webhooks"`
}

type RotateSecretResponse struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
}

type SetStatusRequest struct {
	IsActive bool `json:"is_active"`
}

type TriggerEventRequest struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type TriggerEventResponse struct {
	Accepted bool `json:"accepted"`
}
