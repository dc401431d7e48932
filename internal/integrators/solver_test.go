package integrators

import (
	"errors"
	"math"
	"testing"
)

func harmonic(t float64, y, dydt []float64) {
	dydt[0] = y[1]
	dydt[1] = -y[0]
}

func energy(y []float64) float64 {
	return 0.5 * (y[0]*y[0] + y[1]*y[1])
}

func TestSolver_Harmonic(t *testing.T) {
	for _, method := range Methods() {
		t.Run(method, func(t *testing.T) {
			s, err := New(method, harmonic, DefaultConfig())
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			s.SetInitialValue([]float64{1, 0}, 0)

			for i := 1; i <= 100; i++ {
				if err := s.Integrate(float64(i) * 0.1); err != nil {
					t.Fatalf("Integrate: %v", err)
				}
			}

			if s.T() != 10 {
				t.Errorf("expected t=10 exactly, got %.17g", s.T())
			}
			y := s.Y()
			if math.Abs(y[0]-math.Cos(10)) > 1e-3 {
				t.Errorf("position error too large: got %.6f, expected %.6f", y[0], math.Cos(10))
			}
			if math.Abs(y[1]+math.Sin(10)) > 1e-3 {
				t.Errorf("velocity error too large: got %.6f, expected %.6f", y[1], -math.Sin(10))
			}
		})
	}
}

func TestSolver_EnergyConservation(t *testing.T) {
	s, err := New("dopri5", harmonic, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	y0 := []float64{1, 0}
	s.SetInitialValue(y0, 0)

	if err := s.Integrate(100); err != nil {
		t.Fatal(err)
	}

	drift := math.Abs(energy(s.Y())-energy(y0)) / energy(y0)
	if drift > 1e-3 {
		t.Errorf("dopri5 energy drift too high: %e", drift)
	}
}

func TestSolver_LinearIsExact(t *testing.T) {
	one := func(t float64, y, dydt []float64) { dydt[0] = 1 }
	for _, method := range Methods() {
		s, err := New(method, one, DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		s.SetInitialValue([]float64{3}, 0)
		if err := s.Integrate(2.5); err != nil {
			t.Fatal(err)
		}
		if math.Abs(s.Y()[0]-5.5) > 1e-12 {
			t.Errorf("%s: expected 5.5, got %.15f", method, s.Y()[0])
		}
	}
}

func TestSolver_MaxStepBoundsSubsteps(t *testing.T) {
	one := func(t float64, y, dydt []float64) { dydt[0] = 1 }
	cfg := DefaultConfig()
	cfg.MaxStep = 0.01
	s, _ := New("bs23", one, cfg)
	s.SetInitialValue([]float64{0}, 0)

	if err := s.Integrate(1); err != nil {
		t.Fatal(err)
	}
	if s.Stats().Steps < 100 {
		t.Errorf("expected at least 100 steps with max step 0.01, got %d", s.Stats().Steps)
	}
}

func TestSolver_SetInitialValueDiscardsHistory(t *testing.T) {
	s, _ := New("dopri5", harmonic, DefaultConfig())
	s.SetInitialValue([]float64{1, 0}, 0)
	if err := s.Integrate(1); err != nil {
		t.Fatal(err)
	}
	if s.h == 0 {
		t.Fatal("expected a step size after integrating")
	}

	s.SetInitialValue([]float64{0, 1}, 1)
	if s.h != 0 {
		t.Errorf("expected step history to be cleared, h=%g", s.h)
	}
	if s.T() != 1 || s.Y()[0] != 0 || s.Y()[1] != 1 {
		t.Errorf("unexpected restart point t=%g y=%v", s.T(), s.Y())
	}
}

func TestSolver_Failures(t *testing.T) {
	blowUp := func(t float64, y, dydt []float64) { dydt[0] = math.NaN() }

	s, _ := New("dopri5", blowUp, DefaultConfig())
	s.SetInitialValue([]float64{1}, 0)
	err := s.Integrate(1)
	if !errors.Is(err, ErrStepTooSmall) {
		t.Fatalf("expected ErrStepTooSmall, got %v", err)
	}
	if s.Successful() {
		t.Error("solver should report failure")
	}
	if err := s.Integrate(2); err == nil {
		t.Error("failed solver should keep failing until reinitialized")
	}

	s2, _ := New("bs23", harmonic, DefaultConfig())
	s2.SetInitialValue([]float64{1, 0}, 1)
	if err := s2.Integrate(0.5); !errors.Is(err, ErrBackwards) {
		t.Errorf("expected ErrBackwards, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New("lsoda", harmonic, DefaultConfig()); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
	if _, err := New("dopri5", nil, DefaultConfig()); err == nil {
		t.Error("expected error for nil function")
	}
	cfg := DefaultConfig()
	cfg.RelTol = 0
	if _, err := New("dopri5", harmonic, cfg); err == nil {
		t.Error("expected error for zero tolerance")
	}
}

func TestEulerStep(t *testing.T) {
	y := []float64{1, 2}
	EulerStep(y, []float64{10, -10}, 0.1)
	if math.Abs(y[0]-2) > 1e-15 || math.Abs(y[1]-1) > 1e-15 {
		t.Errorf("EulerStep: got %v", y)
	}
}

func TestNew_Aliases(t *testing.T) {
	for alias, method := range map[string]string{"dop853": "dopri5", "vode": "bs23"} {
		s, err := New(alias, harmonic, DefaultConfig())
		if err != nil {
			t.Fatalf("%s: %v", alias, err)
		}
		if s.Method() != method {
			t.Errorf("%s resolved to %s, want %s", alias, s.Method(), method)
		}
	}
}

func TestNames(t *testing.T) {
	want := []string{"bs23", "dop853", "dopri5", "rk4", "vode"}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}
