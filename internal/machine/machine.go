// Package machine implements the generic strategy state-machine driver. A
// strategy is a record of five functions (a capability set, not a class
// hierarchy); the driver runs one trial from its constant-state build to a
// final result. States are replaced, never mutated in place, which keeps the
// loop resumable and removes aliasing hazards under parallel trial
// execution.
package machine

import (
	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

// Definition is the five-function contract a strategy supplies. C is the
// per-trial immutable constant state, S the per-step current state, R the
// trial result. Strategy parameters (experiment, strategy, instrument-set,
// trial) are closed over when the definition is built, so the driver itself
// stays generic.
type Definition[C any, S any, R any] struct {
	// BuildConstantState builds the per-trial immutable parameters, fixed at
	// trial start and never mutated afterward.
	BuildConstantState func() (C, error)
	// BuildInitialState builds the first current state from the constant
	// state.
	BuildInitialState func(constant C) (S, error)
	// IsFinalState reports whether the trial is complete. Termination is the
	// strategy's responsibility; the driver imposes no step limit.
	IsFinalState func(constant C, current S) bool
	// BuildNextState produces the replacement state for one simulation
	// step.
	BuildNextState func(constant C, current S) (S, error)
	// BuildReturnState extracts the trial result from the final state.
	BuildReturnState func(constant C, current S) (R, error)
}

// Validate checks that every required function is present.
func (d Definition[C, S, R]) Validate() error {
	if d.BuildConstantState == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "strategy definition missing BuildConstantState")
	}

	if d.BuildInitialState == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "strategy definition missing BuildInitialState")
	}

	if d.IsFinalState == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "strategy definition missing IsFinalState")
	}

	if d.BuildNextState == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "strategy definition missing BuildNextState")
	}

	if d.BuildReturnState == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "strategy definition missing BuildReturnState")
	}

	return nil
}

// Run drives one trial to completion: build the constant state once, build
// the initial state, then repeatedly replace the current state with
// BuildNextState until IsFinalState holds, and emit BuildReturnState.
func Run[C any, S any, R any](def Definition[C, S, R]) (R, error) {
	var zero R

	if err := def.Validate(); err != nil {
		return zero, err
	}

	constant, err := def.BuildConstantState()
	if err != nil {
		return zero, errors.Wrap(errors.ErrCodeConstantStateFailed, "failed to build constant state", err)
	}

	current, err := def.BuildInitialState(constant)
	if err != nil {
		return zero, errors.Wrap(errors.ErrCodeInitialStateFailed, "failed to build initial state", err)
	}

	for !def.IsFinalState(constant, current) {
		current, err = def.BuildNextState(constant, current)
		if err != nil {
			return zero, errors.Wrap(errors.ErrCodeTransitionFailed, "failed to build next state", err)
		}
	}

	result, err := def.BuildReturnState(constant, current)
	if err != nil {
		return zero, errors.Wrap(errors.ErrCodeReturnStateFailed, "failed to build return state", err)
	}

	return result, nil
}
