package integrators

import "gonum.org/v1/gonum/floats"

// EulerStep advances y in place by one explicit Euler step of size h
// using the derivative dydt already evaluated at the start of the step.
func EulerStep(y, dydt []float64, h float64) {
	floats.AddScaled(y, h, dydt)
}
