package server

import "errors"

var (
	ErrNoSnapshot     = errors.New("no snapshot published yet")
	ErrAlreadyRunning = errors.New("diagnostics server is already running")
	ErrMissingAddress = errors.New("diagnostics server address is empty")
)
