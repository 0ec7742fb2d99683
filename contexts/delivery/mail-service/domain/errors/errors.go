package errors

import "errors"

var (
	ErrMessageNotFound     = errors.New("mail message not found")
	ErrMessageExists       = errors.New("mail message already exists")
	ErrInvalidMessageInput = errors.New("invalid mail message input")
	ErrInvalidStatusFilter = errors.New("invalid mail status filter")
)
