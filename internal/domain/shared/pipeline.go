package shared

import (
	"context"
	"fmt"
)

// StepFunc is one fallible step of a pipeline. Steps share state through S.
type StepFunc[S any] func(ctx context.Context, state *S) error

// StepHook observes step execution. It is called before a step runs and
// returns the context the step should use plus a completion callback.
type StepHook func(ctx context.Context, pipeline, step string) (context.Context, func(error))

// StepError reports which step of which pipeline failed.
type StepError struct {
	Pipeline string
	Step     string
	Err      error
}

// Error implements the error interface
func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap returns the step's own error so errors.As still finds domain errors
func (e *StepError) Unwrap() error {
	return e.Err
}

type namedStep[S any] struct {
	name string
	fn   StepFunc[S]
}

// Pipeline is an ordered chain of steps that stops at the first failure.
type Pipeline[S any] struct {
	name  string
	steps []namedStep[S]
	hooks []StepHook
}

// NewPipeline creates an empty pipeline
func NewPipeline[S any](name string, hooks ...StepHook) *Pipeline[S] {
	return &Pipeline[S]{name: name, hooks: hooks}
}

// Then appends a step
func (p *Pipeline[S]) Then(name string, fn StepFunc[S]) *Pipeline[S] {
	p.steps = append(p.steps, namedStep[S]{name: name, fn: fn})
	return p
}

// Name returns the pipeline name
func (p *Pipeline[S]) Name() string {
	return p.name
}

// Steps returns the step names in execution order
func (p *Pipeline[S]) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.name
	}
	return names
}

// Run executes every step against state. A cancelled context stops the
// pipeline before the next step starts.
func (p *Pipeline[S]) Run(ctx context.Context, state *S) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Pipeline: p.name, Step: step.name,
				Err: NewTransportError("request cancelled", err)}
		}
		if err := p.runStep(ctx, step, state); err != nil {
			return &StepError{Pipeline: p.name, Step: step.name, Err: err}
		}
	}
	return nil
}

func (p *Pipeline[S]) runStep(ctx context.Context, step namedStep[S], state *S) error {
	dones := make([]func(error), 0, len(p.hooks))
	for _, hook := range p.hooks {
		var done func(error)
		ctx, done = hook(ctx, p.name, step.name)
		dones = append(dones, done)
	}
	err := step.fn(ctx, state)
	for i := len(dones) - 1; i >= 0; i-- {
		if dones[i] != nil {
			dones[i](err)
		}
	}
	return err
}
