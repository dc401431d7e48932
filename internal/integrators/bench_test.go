package integrators

import "testing"

func BenchmarkEulerStep(b *testing.B) {
	y := []float64{1.0, 0.0}
	dydt := make([]float64, 2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		harmonic(0, y, dydt)
		EulerStep(y, dydt, 0.01)
	}
}

func benchmarkMethod(b *testing.B, method string, f Func, n int) {
	s, err := New(method, f, DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	y0 := make([]float64, n)
	for i := range y0 {
		y0[i] = float64(i) * 0.1
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SetInitialValue(y0, 0)
		if err := s.Integrate(1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDopri5(b *testing.B) { benchmarkMethod(b, "dopri5", harmonic, 2) }
func BenchmarkBS23(b *testing.B)   { benchmarkMethod(b, "bs23", harmonic, 2) }

func coupledChain(t float64, y, dydt []float64) {
	n := len(y) / 2
	for i := 0; i < n; i++ {
		left, right := 0.0, 0.0
		if i > 0 {
			left = y[i-1]
		}
		if i < n-1 {
			right = y[i+1]
		}
		dydt[i] = y[n+i]
		dydt[n+i] = left - 2*y[i] + right
	}
}

func BenchmarkDopri5_Chain20(b *testing.B) { benchmarkMethod(b, "dopri5", coupledChain, 20) }
