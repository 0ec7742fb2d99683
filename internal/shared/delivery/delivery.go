package delivery

import (
	"context"
	"time"
)

// Package delivery holds the shared single-attempt delivery contract.
// Both the mail dispatcher and the webhook fan-out consume it; the
// platform http client implements it.

// Request describes one outbound POST attempt.
type Request struct {
	URL     string
	Headers map[string]string
	Body    []byte
	Timeout time.Duration
}

// Outcome is the transient result of one attempt. It is consumed by the
// caller and discarded; no attempt-level audit row is persisted.
type Outcome struct {
	Success         bool
	StatusCode      int
	ResponseExcerpt string
	Err             string
}

// Deliverer performs exactly one attempt with no internal retry.
type Deliverer interface {
	Deliver(ctx context.Context, req Request) Outcome
}
