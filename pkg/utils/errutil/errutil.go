package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/utils/logging"
)

// Handle logs the error with a message and reports it to Sentry when a client is configured.
// The error is returned unchanged so callers can keep propagating it.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	report(ctx, err, msg)
	return err
}

// HandleHTTP logs the error and writes a JSON error body with the given status.
// Only 5xx errors are logged at error level and reported.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	if statusCode >= http.StatusInternalServerError {
		var ge *goerr.Error
		if errors.As(err, &ge) {
			logger.Error("HTTP error",
				"status", statusCode,
				"error", err.Error(),
				"values", ge.Values(),
				"stack", ge.Stacks(),
			)
		} else {
			logger.Error("HTTP error",
				"status", statusCode,
				"error", err.Error(),
			)
		}
		report(ctx, err, "HTTP error")
	} else {
		logger.Info("HTTP client error", "status", statusCode, "error", err.Error())
	}

	body, mErr := json.Marshal(map[string]string{"error": err.Error()})
	if mErr != nil {
		http.Error(w, err.Error(), statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body) //nolint:errcheck // header already committed
}

func report(ctx context.Context, err error, msg string) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	hub = hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		var ge *goerr.Error
		if errors.As(err, &ge) {
			values := sentry.Context{}
			for k, v := range ge.Values() {
				values[k] = v
			}
			scope.SetContext("goerr", values)
		}
	})
	hub.CaptureException(err)
}
