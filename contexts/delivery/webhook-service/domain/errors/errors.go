package errors

import "errors"

var (
	ErrSubscriptionNotFound     = errors.New("webhook subscription not found")
	ErrSubscriptionExists       = errors.New("webhook subscription already exists")
	ErrInvalidSubscriptionInput = errors.New("invalid webhook subscription input")
	ErrInvalidEventName         = errors.New("invalid event name")
)
