package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type EnqueueMessageRequest struct {
	Recipient    string `json:"recipient"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	ScheduledFor string `json:"scheduled_for,omitempty"`
}

type EnqueueMessageResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

type MessageDTO struct {
	ID           string `json:"id"`
	Recipient    string `json:"recipient"`
	Subject      string `json:"subject"`
	Status       string `json:"status"`
	Attempts     int    `json:"attempts"`
	LastError    string `json:"last_error,omitempty"`
	ScheduledFor string `json:"scheduled_for"`
	SentAt       string `json:"sent_at,omitempty"`
}

type ListMessagesResponse struct {
	Messages []MessageDTO `json:"messages"`
}
