package domain

import "errors"

var (
	ErrSendingReplyFailed = errors.New("failed to send reply")
	ErrDuplicateCommand   = errors.New("command already registered")
	ErrCommandNotFound    = errors.New("command not found")
	ErrInvalidTransition  = errors.New("invalid interaction state transition")
	ErrTimeout            = errors.New("request timeout")
)

var (
	ErrUnexpectedStatus = errors.New("unexpected http status")
	ErrInvalidResponse  = errors.New("invalid response format")
)
