package provisioning

import (
	"fmt"
	"time"
)

// Step is one named stage of the setup sequence.
type Step interface {
	// Name returns the short machine-friendly name of this step.
	Name() string

	// Run executes the step against the shared context.
	Run(ctx *Context) error
}

// FatalError is a step failure that terminates the run. It carries the
// run's tracking id for support correlation.
type FatalError struct {
	Step       string
	TrackingID string
	Err        error
}

// Error implements error.
func (e *FatalError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

// Unwrap returns the underlying step error.
func (e *FatalError) Unwrap() error {
	return e.Err
}

// Pipeline is a fixed, ordered list of steps. Steps run strictly
// sequentially; there is no reordering or parallelism.
type Pipeline struct {
	Steps []Step
}

// NewPipeline creates a pipeline over the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{Steps: steps}
}

// Run executes all steps in order. The first failing step aborts the run
// with a FatalError, except in dry-run mode where failures are logged and
// the remaining steps still execute; a dry run therefore always returns nil
// and reports the aggregate outcome through the observer.
func (p *Pipeline) Run(ctx *Context) error {
	start := time.Now()
	ctx.Observer.Infof("starting setup with %d steps (tracking id %s)", len(p.Steps), ctx.TrackingID)

	failed := 0
	for i, step := range p.Steps {
		stepStart := time.Now()
		ctx.Observer.Event(Event{
			Type:    EventStepStarted,
			Step:    step.Name(),
			Message: fmt.Sprintf("starting (%d/%d)", i+1, len(p.Steps)),
		})

		if err := step.Run(ctx); err != nil {
			ctx.Observer.Event(Event{
				Type:    EventStepFailed,
				Step:    step.Name(),
				Message: fmt.Sprintf("failed: %v", err),
			})
			if !ctx.Options.DryRun {
				return &FatalError{Step: step.Name(), TrackingID: ctx.TrackingID, Err: err}
			}
			failed++
			ctx.Observer.Warnf("dry-run: continuing past %s failure", step.Name())
			continue
		}

		ctx.Observer.Event(Event{
			Type:    EventStepCompleted,
			Step:    step.Name(),
			Message: fmt.Sprintf("completed in %v", time.Since(stepStart).Round(time.Millisecond)),
		})
	}

	if failed > 0 {
		ctx.Observer.Warnf("dry run finished with %d failing steps in %v", failed, time.Since(start).Round(time.Millisecond))
		return nil
	}
	ctx.Observer.Infof("setup completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
