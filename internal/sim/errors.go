package sim

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes returned by Bind and Run. Every typed error below matches
// exactly one of these with errors.Is.
var (
	// ErrConfiguration indicates a model/solver mismatch or invalid parameters.
	ErrConfiguration = errors.New("sim: configuration error")

	// ErrUnknownSolver indicates a solver identifier outside the known set.
	ErrUnknownSolver = errors.New("sim: unknown solver")

	// ErrNumericalFailure indicates the integration diverged or the solver gave up.
	ErrNumericalFailure = errors.New("sim: numerical failure")

	// ErrExternalVariable indicates a missing or misbehaving external variable provider.
	ErrExternalVariable = errors.New("sim: external variable error")

	// ErrReset indicates a reset apply function failed; the run is aborted.
	ErrReset = errors.New("sim: reset failed")
)

type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrConfiguration, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

type UnknownSolverError struct {
	Name  string
	Known []string
}

func (e *UnknownSolverError) Error() string {
	return fmt.Sprintf("%v %q (known: %s)", ErrUnknownSolver, e.Name, strings.Join(e.Known, ", "))
}

func (e *UnknownSolverError) Is(target error) bool { return target == ErrUnknownSolver }

// NumericalFailureError wraps a solver failure with simulation context.
type NumericalFailureError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *NumericalFailureError) Error() string {
	return fmt.Sprintf("%v at step %d (t=%.6g): %v", ErrNumericalFailure, e.Step, e.Time, e.Wrapped)
}

func (e *NumericalFailureError) Unwrap() error { return e.Wrapped }

func (e *NumericalFailureError) Is(target error) bool { return target == ErrNumericalFailure }

type ExternalVariableError struct {
	Reason string
}

func (e *ExternalVariableError) Error() string {
	return fmt.Sprintf("%v: %s", ErrExternalVariable, e.Reason)
}

func (e *ExternalVariableError) Is(target error) bool { return target == ErrExternalVariable }

type ResetError struct {
	Index   int
	Order   int
	Time    float64
	Wrapped error
}

func (e *ResetError) Error() string {
	return fmt.Sprintf("%v: reset %d (order %d) at t=%.6g: %v", ErrReset, e.Index, e.Order, e.Time, e.Wrapped)
}

func (e *ResetError) Unwrap() error { return e.Wrapped }

func (e *ResetError) Is(target error) bool { return target == ErrReset }
