// Package objective provides benchmark functions for the swarm optimizer.
// See http://en.wikipedia.org/wiki/Test_functions_for_optimization.
package objective

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Point is a known optimum of a function.
type Point struct {
	Pos []float64
	Val float64
}

// Func is a named objective with its conventional search box.
type Func interface {
	Name() string
	Eval(v []float64) float64
	// Bounds returns the scalar search bounds applied to every dimension.
	Bounds() (lower, upper float64)
	// Dim returns the required dimension, or 0 if any dimension works.
	Dim() int
	// Optima returns the known global minima for the default dimension.
	Optima() []Point
}

var registry = map[string]Func{}

func register(fn Func) {
	registry[strings.ToLower(fn.Name())] = fn
}

func init() {
	register(Valley{})
	register(Sphere{})
	register(Rosenbrock{})
	register(Rastrigin{})
	register(Ackley{})
	register(Himmelblau{})
	register(Eggholder{})
}

// Lookup returns the function registered under name (case-insensitive).
func Lookup(name string) (Func, error) {
	fn, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown function %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return fn, nil
}

// Names lists the registered function names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, fn := range registry {
		names = append(names, fn.Name())
	}
	sort.Strings(names)
	return names
}

// CheckDim returns an error if fn cannot be evaluated in dim dimensions.
func CheckDim(fn Func, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", dim)
	}
	if fn.Dim() != 0 && fn.Dim() != dim {
		return fmt.Errorf("%s requires dimension %d, got %d", fn.Name(), fn.Dim(), dim)
	}
	return nil
}

// Valley is f(x, y) = (2-x)^2 + 10(y^2-x)^2. Its minimum 0 lies where
// x = 2 and y^2 = x.
type Valley struct{}

func (Valley) Name() string { return "valley" }
func (Valley) Dim() int     { return 2 }

func (Valley) Eval(v []float64) float64 {
	x, y := v[0], v[1]
	return (2-x)*(2-x) + 10*(y*y-x)*(y*y-x)
}

func (Valley) Bounds() (float64, float64) { return -10, 10 }

func (Valley) Optima() []Point {
	return []Point{
		{Pos: []float64{2, math.Sqrt2}, Val: 0},
		{Pos: []float64{2, -math.Sqrt2}, Val: 0},
	}
}

type Sphere struct{}

func (Sphere) Name() string { return "sphere" }
func (Sphere) Dim() int     { return 0 }

func (Sphere) Eval(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return sum
}

func (Sphere) Bounds() (float64, float64) { return -10, 10 }

func (Sphere) Optima() []Point {
	return []Point{{Pos: []float64{0, 0}, Val: 0}}
}

type Rosenbrock struct{}

func (Rosenbrock) Name() string { return "rosenbrock" }
func (Rosenbrock) Dim() int     { return 0 }

func (Rosenbrock) Eval(v []float64) float64 {
	var sum float64
	for i := 0; i < len(v)-1; i++ {
		a := v[i+1] - v[i]*v[i]
		b := 1 - v[i]
		sum += 100*a*a + b*b
	}
	return sum
}

func (Rosenbrock) Bounds() (float64, float64) { return -5, 10 }

func (Rosenbrock) Optima() []Point {
	return []Point{{Pos: []float64{1, 1}, Val: 0}}
}

type Rastrigin struct{}

func (Rastrigin) Name() string { return "rastrigin" }
func (Rastrigin) Dim() int     { return 0 }

func (Rastrigin) Eval(v []float64) float64 {
	sum := 10 * float64(len(v))
	for _, x := range v {
		sum += x*x - 10*math.Cos(2*math.Pi*x)
	}
	return sum
}

func (Rastrigin) Bounds() (float64, float64) { return -5.12, 5.12 }

func (Rastrigin) Optima() []Point {
	return []Point{{Pos: []float64{0, 0}, Val: 0}}
}

type Ackley struct{}

func (Ackley) Name() string { return "ackley" }
func (Ackley) Dim() int     { return 2 }

func (Ackley) Eval(v []float64) float64 {
	x, y := v[0], v[1]
	return -20*math.Exp(-0.2*math.Sqrt(0.5*(x*x+y*y))) -
		math.Exp(0.5*(math.Cos(2*math.Pi*x)+math.Cos(2*math.Pi*y))) +
		20 + math.E
}

func (Ackley) Bounds() (float64, float64) { return -5, 5 }

func (Ackley) Optima() []Point {
	return []Point{{Pos: []float64{0, 0}, Val: 0}}
}

type Himmelblau struct{}

func (Himmelblau) Name() string { return "himmelblau" }
func (Himmelblau) Dim() int     { return 2 }

func (Himmelblau) Eval(v []float64) float64 {
	x, y := v[0], v[1]
	a := x*x + y - 11
	b := x + y*y - 7
	return a*a + b*b
}

func (Himmelblau) Bounds() (float64, float64) { return -5, 5 }

func (Himmelblau) Optima() []Point {
	return []Point{
		{Pos: []float64{3, 2}, Val: 0},
		{Pos: []float64{-2.805118, 3.131312}, Val: 0},
		{Pos: []float64{-3.779310, -3.283186}, Val: 0},
		{Pos: []float64{3.584428, -1.848126}, Val: 0},
	}
}

type Eggholder struct{}

func (Eggholder) Name() string { return "eggholder" }
func (Eggholder) Dim() int     { return 2 }

func (Eggholder) Eval(v []float64) float64 {
	x, y := v[0], v[1]
	return -(y+47)*math.Sin(math.Sqrt(math.Abs(y+x/2+47))) - x*math.Sin(math.Sqrt(math.Abs(x-(y+47))))
}

func (Eggholder) Bounds() (float64, float64) { return -512, 512 }

func (Eggholder) Optima() []Point {
	return []Point{{Pos: []float64{512, 404.2319}, Val: -959.6407}}
}
