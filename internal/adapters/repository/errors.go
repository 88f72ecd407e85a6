package repository

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrNoSessions       = errors.New("no prior session")
	ErrEmptySessionID   = errors.New("empty session id")
	ErrDuplicateSession = errors.New("session already saved")
)
