package service

import (
	"context"
	"errors"
	"fmt"
)

// Errors surfaced by the proving stages. Backend failures and timeouts are retryable;
// a negative verdict is never an error.
var (
	ErrBackendProve        = errors.New("proving backend failed")
	ErrBackendVerify       = errors.New("receipt verification failed to run")
	ErrInvalidReceipt      = errors.New("receipt does not verify")
	ErrProveTimeout        = errors.New("proving timed out")
	ErrPoolBusy            = errors.New("no proving slot available")
	ErrMoveSequenceTooLong = errors.New("move sequence too long")
	ErrMissingArtifact     = errors.New("maze artifact is required")
	ErrMissingGrid         = errors.New("grid is required")
	ErrInvalidArtifact     = errors.New("maze artifact is inconsistent with its receipt")
	ErrInvalidCredentials  = errors.New("invalid name or password")
)

// backendError wraps a backend failure with stage, leaving pool and context errors as
// they are so callers can tell a busy or slow backend from a broken one.
func backendError(stage, err error) error {
	if errors.Is(err, ErrProveTimeout) || errors.Is(err, ErrPoolBusy) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", stage, err)
}
