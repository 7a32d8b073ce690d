package trigger

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/handybase/handy/pkg/logger"
)

// KeySource provides the current trigger key and its rotation. The
// configuration registry implements it.
type KeySource interface {
	CronKey(ctx context.Context) (string, error)
	RotateCronKey(ctx context.Context) (string, error)
}

// Runner executes all due tasks at the given instant. The cron runner
// implements it.
type Runner interface {
	Run(ctx context.Context, now time.Time) error
}

type handler struct {
	keys   KeySource
	runner Runner
	logger *slog.Logger
}

// Option configures the trigger routes.
type Option func(*handler)

// WithLogger sets the handler's logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *handler) {
		if log != nil {
			h.logger = log
		}
	}
}

// NewRouter builds the HTTP surface over the runner. Mount it on the
// application server or serve it standalone.
func NewRouter(keys KeySource, runner Runner, opts ...Option) (http.Handler, error) {
	if keys == nil {
		return nil, ErrNilKeySource
	}
	if runner == nil {
		return nil, ErrNilRunner
	}

	h := &handler{
		keys:   keys,
		runner: runner,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Get("/cron/{key}", h.run)
	r.Get("/cron/{key}/reset", h.reset)
	return r, nil
}

// run kicks off due tasks when the key matches. The response never varies
// with the outcome.
func (h *handler) run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.keyMatches(ctx, chi.URLParam(r, "key")) {
		// task goroutines outlive the request
		runCtx := context.WithoutCancel(ctx)
		if err := h.runner.Run(runCtx, time.Now()); err != nil {
			h.logger.Error("cron trigger run failed", logger.Error(err))
		}
	}

	done(w)
}

// reset rotates the trigger key when the presented key matches.
func (h *handler) reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.keyMatches(ctx, chi.URLParam(r, "key")) {
		if _, err := h.keys.RotateCronKey(ctx); err != nil {
			h.logger.Error("cron key rotation failed", logger.Error(err))
		}
	}

	done(w)
}

func (h *handler) keyMatches(ctx context.Context, presented string) bool {
	current, err := h.keys.CronKey(ctx)
	if err != nil {
		h.logger.Error("failed to read cron trigger key", logger.Error(err))
		return false
	}
	return presented != "" && presented == current
}

func done(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("done"))
}
