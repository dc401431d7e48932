package integrators

// Tableau is the Butcher tableau of an embedded explicit Runge-Kutta pair.
type Tableau struct {
	Name string
	C    []float64
	A    [][]float64
	// B propagates the solution, E holds B minus the embedded weights.
	B []float64
	E []float64
	// ErrorOrder is the order of the embedded estimate plus one; step
	// factors are computed as err^(-1/ErrorOrder).
	ErrorOrder int
}

// Stages returns the number of derivative evaluations per attempted step.
func (t *Tableau) Stages() int { return len(t.C) }

// Dormand-Prince 5(4)
var dopri5 = &Tableau{
	Name: "dopri5",
	C:    []float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1},
	A: [][]float64{
		{},
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
		{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
	},
	B: []float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0},
	E: []float64{
		35.0/384.0 - 5179.0/57600.0,
		0,
		500.0/1113.0 - 7571.0/16695.0,
		125.0/192.0 - 393.0/640.0,
		-2187.0/6784.0 + 92097.0/339200.0,
		11.0/84.0 - 187.0/2100.0,
		-1.0 / 40.0,
	},
	ErrorOrder: 5,
}

// Bogacki-Shampine 3(2)
var bs23 = &Tableau{
	Name: "bs23",
	C:    []float64{0, 1.0 / 2.0, 3.0 / 4.0, 1},
	A: [][]float64{
		{},
		{1.0 / 2.0},
		{0, 3.0 / 4.0},
		{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0},
	},
	B:          []float64{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0, 0},
	E:          []float64{2.0/9.0 - 7.0/24.0, 1.0/3.0 - 1.0/4.0, 4.0/9.0 - 1.0/3.0, -1.0 / 8.0},
	ErrorOrder: 3,
}

var tableaus = map[string]*Tableau{
	dopri5.Name: dopri5,
	bs23.Name:   bs23,
}
