package domain

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrBackendUnavailable = errors.New("durable backend unavailable")
	ErrInvalidRole        = errors.New("invalid role")
)
