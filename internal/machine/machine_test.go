package machine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

type MachineTestSuite struct {
	suite.Suite
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineTestSuite))
}

// countdown counts steps from limit down to zero and returns the number of
// transitions taken.
func countdown(limit int) Definition[int, int, int] {
	return Definition[int, int, int]{
		BuildConstantState: func() (int, error) { return limit, nil },
		BuildInitialState:  func(constant int) (int, error) { return 0, nil },
		IsFinalState:       func(constant int, current int) bool { return current >= constant },
		BuildNextState:     func(constant int, current int) (int, error) { return current + 1, nil },
		BuildReturnState:   func(constant int, current int) (int, error) { return current, nil },
	}
}

func (suite *MachineTestSuite) TestRunToCompletion() {
	result, err := Run(countdown(10))
	suite.NoError(err)
	suite.Equal(10, result)
}

func (suite *MachineTestSuite) TestImmediatelyFinalSkipsTransitions() {
	transitions := 0

	def := countdown(0)
	def.BuildNextState = func(constant int, current int) (int, error) {
		transitions++

		return current + 1, nil
	}

	result, err := Run(def)
	suite.NoError(err)
	suite.Equal(0, result)
	suite.Equal(0, transitions, "initial state already final, no steps expected")
}

func (suite *MachineTestSuite) TestConstantStateBuiltOnce() {
	builds := 0

	def := countdown(5)
	def.BuildConstantState = func() (int, error) {
		builds++

		return 5, nil
	}

	_, err := Run(def)
	suite.NoError(err)
	suite.Equal(1, builds)
}

func (suite *MachineTestSuite) TestValidateMissingFunction() {
	def := countdown(1)
	def.IsFinalState = nil

	_, err := Run(def)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *MachineTestSuite) TestErrorsAreWrappedWithPhase() {
	boom := fmt.Errorf("boom")

	def := countdown(3)
	def.BuildConstantState = func() (int, error) { return 0, boom }
	_, err := Run(def)
	suite.True(errors.HasCode(err, errors.ErrCodeConstantStateFailed))
	suite.ErrorIs(err, boom)

	def = countdown(3)
	def.BuildInitialState = func(constant int) (int, error) { return 0, boom }
	_, err = Run(def)
	suite.True(errors.HasCode(err, errors.ErrCodeInitialStateFailed))

	def = countdown(3)
	def.BuildNextState = func(constant int, current int) (int, error) { return 0, boom }
	_, err = Run(def)
	suite.True(errors.HasCode(err, errors.ErrCodeTransitionFailed))

	def = countdown(3)
	def.BuildReturnState = func(constant int, current int) (int, error) { return 0, boom }
	_, err = Run(def)
	suite.True(errors.HasCode(err, errors.ErrCodeReturnStateFailed))
}

func (suite *MachineTestSuite) TestStatesAreReplacedNotShared() {
	// slice-typed state: each step must produce a fresh value, never append
	// into a shared backing array
	type state struct {
		steps []int
	}

	def := Definition[int, state, []int]{
		BuildConstantState: func() (int, error) { return 4, nil },
		BuildInitialState:  func(constant int) (state, error) { return state{steps: nil}, nil },
		IsFinalState:       func(constant int, current state) bool { return len(current.steps) >= constant },
		BuildNextState: func(constant int, current state) (state, error) {
			next := make([]int, len(current.steps), len(current.steps)+1)
			copy(next, current.steps)

			return state{steps: append(next, len(current.steps))}, nil
		},
		BuildReturnState: func(constant int, current state) ([]int, error) { return current.steps, nil },
	}

	result, err := Run(def)
	suite.NoError(err)
	suite.Equal([]int{0, 1, 2, 3}, result)
}
