package main

import (
	"errors"

	"github.com/WessleyAI/sportscar-dash/engine/domain"
)

// Exit codes for the dashboard CLI.
const (
	ExitOK          = 0 // Clean shutdown.
	ExitRuntime     = 1 // Server or dependency failure.
	ExitInvalidArgs = 2 // Bad flags or configuration.
	ExitBadDataset  = 3 // The dataset could not be loaded.
)

type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string {
	if e.err == nil {
		return "exit"
	}
	return e.err.Error()
}

func (e *exitCodeError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitCodeError{code: code, err: err}
}

// datasetExit maps a load failure to its exit code.
func datasetExit(err error) error {
	if errors.Is(err, domain.ErrMalformedDataset) {
		return withExitCode(ExitBadDataset, err)
	}
	return withExitCode(ExitRuntime, err)
}
