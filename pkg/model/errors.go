package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrSessionUnavailable is returned when a turn is sent with no live
	// session and lazy bootstrap did not succeed
	ErrSessionUnavailable = goerr.New("session unavailable")

	// ErrNoCredentials indicates no model credential is configured; the
	// companion is disabled rather than crashing
	ErrNoCredentials = goerr.New("no model credentials configured")

	ErrInvalidRole     = goerr.New("invalid message role")
	ErrInvalidCategory = goerr.New("invalid nexus category")
	ErrNotFound        = goerr.New("not found")
)
