package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeValidation     = "COMMAND_VALIDATION_FAILED"
	codeRejected       = "COMMAND_REJECTED"
	codeContextCancel  = "COMMAND_CONTEXT_CANCELED"
	codeContextTimeout = "COMMAND_CONTEXT_TIMEOUT"
	codeContextError   = "COMMAND_CONTEXT_ERROR"
	codeExecuteFailed  = "COMMAND_EXECUTION_FAILED"
)

func wrapValidationError(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(codeValidation)
}

func wrapRejectedError(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command rejected").
		WithTextCode(codeRejected)
}

func wrapContextError(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(codeContextCancel)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(codeContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(codeContextError)
	}
}

func wrapExecuteError(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(codeExecuteFailed)
}
