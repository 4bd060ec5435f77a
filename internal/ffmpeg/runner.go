package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"splice/internal/logging"
)

// Runner flags stay outside the compiled vector so cache keys depend
// only on the pipeline itself.
var runnerFlags = []string{"-hide_banner", "-nostats", "-progress", "pipe:1"}

const stderrTailLines = 20

// Result summarizes one completed ffmpeg invocation.
type Result struct {
	RunID   string
	Elapsed time.Duration
}

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithTimeout bounds a single render; zero disables the limit.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		r.timeout = timeout
	}
}

// WithLogger attaches a logger for run lifecycle and progress events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner executes compiled ffmpeg argument vectors.
type Runner struct {
	binary  string
	timeout time.Duration
	exec    Executor
	logger  *slog.Logger
}

// New constructs a runner for the given ffmpeg binary.
func New(binary string, opts ...Option) (*Runner, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	runner := &Runner{
		binary: binary,
		exec:   commandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

// Render executes the argument vector, forwarding progress blocks to
// the optional callback.
func (r *Runner) Render(ctx context.Context, args []string, progress func(ProgressUpdate)) (Result, error) {
	if len(args) == 0 {
		return Result{}, errors.New("empty argument vector")
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	log := logging.WithContext(ctx, r.logger)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	full := make([]string, 0, len(runnerFlags)+len(args))
	full = append(full, runnerFlags...)
	full = append(full, args...)

	log.Info("ffmpeg starting",
		logging.String(logging.FieldBinary, r.binary),
		logging.Int("argc", len(full)))

	var parser progressParser
	var stderrTail []string
	started := time.Now()
	err := r.exec.Run(ctx, r.binary, full,
		func(line string) {
			update, ok := parser.feed(line)
			if !ok {
				return
			}
			if progress != nil {
				progress(update)
			}
			log.Debug("ffmpeg progress",
				logging.Int64("frame", update.Frame),
				logging.Float64("fps", update.FPS),
				logging.Duration("out_time", update.OutTime))
		},
		func(line string) {
			stderrTail = append(stderrTail, line)
			if len(stderrTail) > stderrTailLines {
				stderrTail = stderrTail[1:]
			}
		})
	elapsed := time.Since(started)
	if err != nil {
		if detail := strings.TrimSpace(strings.Join(stderrTail, "\n")); detail != "" {
			return Result{}, fmt.Errorf("ffmpeg render: %w: %s", err, detail)
		}
		return Result{}, fmt.Errorf("ffmpeg render: %w", err)
	}

	log.Info("ffmpeg finished", logging.Duration("elapsed", elapsed))
	return Result{RunID: runID, Elapsed: elapsed}, nil
}
