package orch

import (
	"fmt"
	"net/http"
)

// StopError reports a failed stop request against the container runtime.
// It carries an HTTP status so the API layer can map it without inspecting
// the underlying runtime error.
type StopError struct {
	Service string
	Err     error
}

func (e *StopError) Error() string   { return fmt.Sprintf("stop %s: %v", e.Service, e.Err) }
func (e *StopError) Unwrap() error   { return e.Err }
func (e *StopError) StatusCode() int { return http.StatusBadGateway }
