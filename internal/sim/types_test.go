package sim

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name  string
		v     []float64
		valid bool
	}{
		{"empty", []float64{}, true},
		{"normal", []float64{1.0, 2.0, 3.0}, true},
		{"zeros", []float64{0.0, 0.0}, true},
		{"with NaN", []float64{1.0, math.NaN()}, false},
		{"with +Inf", []float64{1.0, math.Inf(1)}, false},
		{"with -Inf", []float64{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFinite(tt.v); got != tt.valid {
				t.Errorf("IsFinite() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestNewVector(t *testing.T) {
	v := NewVector(3)
	assert.Len(t, v, 3)
	for _, x := range v {
		assert.True(t, math.IsNaN(x))
	}
	assert.Empty(t, NewVector(0))
}

func TestInfo_Channels(t *testing.T) {
	info := testInfo("m", 2, 1)
	ids := make([]string, 0)
	for _, c := range info.Channels() {
		ids = append(ids, c.ID())
	}
	assert.Equal(t, []string{"state.a", "state.b", "var.a"}, ids)
}

func TestKind(t *testing.T) {
	tests := []struct {
		kind       Kind
		resettable bool
		driven     bool
		name       string
	}{
		{KindBase, false, false, "base"},
		{KindResetCapable, true, false, "reset-capable"},
		{KindExternallyDriven, false, true, "externally-driven"},
		{KindBoth, true, true, "reset-capable+externally-driven"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.resettable, tt.kind.Resettable(), tt.name)
		assert.Equal(t, tt.driven, tt.kind.Driven(), tt.name)
		assert.Equal(t, tt.name, tt.kind.String())
	}
}

func TestErrorClasses(t *testing.T) {
	tests := []struct {
		err    error
		target error
	}{
		{configErrorf("bad"), ErrConfiguration},
		{&UnknownSolverError{Name: "x"}, ErrUnknownSolver},
		{&NumericalFailureError{Wrapped: errNonFinite}, ErrNumericalFailure},
		{&ExternalVariableError{Reason: "nil"}, ErrExternalVariable},
		{&ResetError{Wrapped: errBoom}, ErrReset},
	}
	classes := []error{ErrConfiguration, ErrUnknownSolver, ErrNumericalFailure, ErrExternalVariable, ErrReset}

	for _, tt := range tests {
		wrapped := fmt.Errorf("context: %w", tt.err)
		for _, class := range classes {
			assert.Equal(t, class == tt.target, errors.Is(wrapped, class), "%v vs %v", tt.err, class)
		}
	}

	assert.ErrorIs(t, &ResetError{Wrapped: errBoom}, errBoom)
	assert.ErrorIs(t, &NumericalFailureError{Wrapped: errNonFinite}, errNonFinite)
}
