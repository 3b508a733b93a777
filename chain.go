package bookbind

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// AggregateFailure is the terminal error produced when every engine in a
// chain fails. It carries one attempt per configured engine, in order, so
// the caller can surface the full log verbatim instead of guessing a
// cause.
type AggregateFailure struct {
	Target   TargetFormat
	Attempts []EngineAttempt
}

func (e *AggregateFailure) Error() string {
	return fmt.Sprintf("all %d engine(s) failed for %s target", len(e.Attempts), e.Target)
}

// EngineChain tries an ordered list of engines for one target format
// until one succeeds. Attempts run strictly sequentially: each
// subprocess-backed engine may consume significant CPU and memory, and
// ordered diagnostics matter more than latency.
type EngineChain struct {
	target  TargetFormat
	timeout time.Duration
	logger  *log.Logger
	engines []Engine
}

func newEngineChain(target TargetFormat, timeout time.Duration, logger *log.Logger, engines ...Engine) *EngineChain {
	return &EngineChain{
		target:  target,
		timeout: timeout,
		logger:  logger,
		engines: engines,
	}
}

// Convert renders source to outputPath through the fallback chain. Each
// engine gets exactly one attempt under its own timeout; its failure is
// recorded and its partial artifact discarded before the next engine
// runs. Cancellation is checked before every attempt and aborts the chain
// with ctx.Err() rather than a fallback.
//
// On success the result carries every attempt made so far, including the
// failures that preceded the winning engine.
func (c *EngineChain) Convert(ctx context.Context, scope *TempScope, source, outputPath string, opts *StyleOptions) (*ConversionResult, error) {
	attempts := make([]EngineAttempt, 0, len(c.engines))

	for _, eng := range c.engines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := c.renderOnce(ctx, eng, scope, source, outputPath, opts)
		if err == nil {
			attempts = append(attempts, EngineAttempt{Engine: eng.ID(), Succeeded: true})
			c.logger.Debug("engine succeeded", "target", c.target, "engine", eng.ID())
			return &ConversionResult{
				ArtifactPath: outputPath,
				EngineUsed:   eng.ID(),
				Attempts:     attempts,
			}, nil
		}

		// Caller cancellation aborts the run; it is not a tool failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		attempts = append(attempts, EngineAttempt{Engine: eng.ID(), Detail: err.Error()})
		removeArtifact(outputPath)
		c.logger.Debug("engine failed, falling back", "target", c.target, "engine", eng.ID(), "err", err)
	}

	return nil, &AggregateFailure{Target: c.target, Attempts: attempts}
}

// renderOnce runs a single attempt under the chain's per-attempt timeout.
func (c *EngineChain) renderOnce(ctx context.Context, eng Engine, scope *TempScope, source, outputPath string, opts *StyleOptions) error {
	attemptCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return eng.Render(attemptCtx, scope, source, outputPath, opts)
}
