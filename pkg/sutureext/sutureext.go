// Package sutureext wires suture supervisors into slog.
package sutureext

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
)

type Options struct {
	Logger *slog.Logger
	// Timeout is how long a service may take to stop. Zero keeps suture's
	// default.
	Timeout time.Duration
	// FailureBackoff is how long a failing service waits before it is
	// restarted again. Zero keeps suture's default.
	FailureBackoff time.Duration
}

// New returns a supervisor that reports its events to opts.Logger.
func New(name string, opts Options) *suture.Supervisor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return suture.New(name, suture.Spec{
		EventHook:      EventHook(logger.With("supervisor", name)),
		Timeout:        opts.Timeout,
		FailureBackoff: opts.FailureBackoff,
	})
}

func EventHook(logger *slog.Logger) suture.EventHook {
	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			logger.Warn("Service did not stop in time", "service", e.ServiceName)
		case suture.EventServicePanic:
			logger.Error("Service panicked", "service", e.ServiceName, "panic", e.PanicMsg, "restarting", e.Restarting)
			logger.Debug(e.Stacktrace, "service", e.ServiceName)
		case suture.EventServiceTerminate:
			err, _ := e.Err.(error)
			if errors.Is(err, suture.ErrTerminateSupervisorTree) {
				logger.Info("Service stopped the supervisor", "service", e.ServiceName)
				return
			}
			logger.Error("Service failed", "service", e.ServiceName, "error", e.Err, "failures", e.CurrentFailures, "restarting", e.Restarting)
		case suture.EventBackoff:
			logger.Warn("Too many service failures, backing off")
		case suture.EventResume:
			logger.Info("Leaving backoff")
		default:
			logger.Warn("Unknown supervisor event", "type", int(e.Type()), "event", e.String())
		}
	}
}

// Service is a suture service that names itself in logs.
type Service interface {
	String() string
	suture.Service
}

func Add(super *suture.Supervisor, service Service) suture.ServiceToken {
	return super.Add(sanitizeService{Service: service})
}

type sanitizeService struct {
	Service
}

func (s sanitizeService) Serve(ctx context.Context) error {
	return SanitizeError(ctx, s.Service.Serve(ctx))
}

// SanitizeError hides context errors from suture unless ctx itself is done.
// Suture treats a context error as the supervisor shutting down and would not
// restart the service.
func SanitizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	errs := []error{errors.New(err.Error())}
	for _, keep := range []error{suture.ErrDoNotRestart, suture.ErrTerminateSupervisorTree} {
		if errors.Is(err, keep) {
			errs = append(errs, keep)
		}
	}
	return errors.Join(errs...)
}
