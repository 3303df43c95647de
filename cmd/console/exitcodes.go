package main

import (
	"github.com/go-faster/errors"

	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/serrors"
	"github.com/iota-uz/staff-console/pkg/session"
)

type cliError struct {
	code int
	err  error
	// reported errors were already shown through the notifier.
	reported bool
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitValidation = 2
	exitUsage      = 3
	exitAPI        = 4
	exitAuth       = 5
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// reported classifies err like classify but keeps Execute from printing it
// a second time.
func reported(err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: classify(err), err: err, reported: true}
}

// classify maps API, session and validation failures to exit codes.
func classify(err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	var verrs serrors.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return exitValidation
	case errors.Is(err, session.ErrNoSession):
		return exitAuth
	case apiclient.IsStatus(err, 401), apiclient.IsStatus(err, 403):
		return exitAuth
	case apiclient.IsKind(err, apiclient.KindValidation):
		return exitValidation
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return exitAPI
	}
	return 1
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	return classify(err)
}

func silent(err error) bool {
	var ce *cliError
	return errors.As(err, &ce) && ce.reported
}
