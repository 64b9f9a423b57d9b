package objective

import (
	"math"
	"testing"
)

func TestOptimaEvaluate(t *testing.T) {
	for _, name := range Names() {
		fn, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q) failed: %v", name, err)
		}

		for _, opt := range fn.Optima() {
			got := fn.Eval(opt.Pos)
			if math.Abs(got-opt.Val) > 1e-3 {
				t.Errorf("%s at %v: expected %f, got %f", name, opt.Pos, opt.Val, got)
			}
		}
	}
}

func TestValley(t *testing.T) {
	fn := Valley{}

	if got := fn.Eval([]float64{0, 0}); got != 4 {
		t.Errorf("Expected 4 at origin, got %f", got)
	}
	if got := fn.Eval([]float64{2, 2}); got != 40 {
		t.Errorf("Expected 40 at (2,2), got %f", got)
	}

	lo, hi := fn.Bounds()
	if lo != -10 || hi != 10 {
		t.Errorf("Expected bounds [-10,10], got [%f,%f]", lo, hi)
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	fn, err := Lookup("Sphere")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if fn.Name() != "sphere" {
		t.Errorf("Expected sphere, got %s", fn.Name())
	}
}

func TestLookup_Unknown(t *testing.T) {
	if _, err := Lookup("nope"); err == nil {
		t.Error("Expected error for unknown function")
	}
}

func TestNames_Sorted(t *testing.T) {
	names := Names()
	if len(names) != 7 {
		t.Fatalf("Expected 7 functions, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("Names not sorted: %v", names)
		}
	}
}

func TestCheckDim(t *testing.T) {
	if err := CheckDim(Valley{}, 2); err != nil {
		t.Errorf("Valley in 2-D should be valid: %v", err)
	}
	if err := CheckDim(Valley{}, 3); err == nil {
		t.Error("Valley in 3-D should be rejected")
	}
	if err := CheckDim(Sphere{}, 7); err != nil {
		t.Errorf("Sphere in 7-D should be valid: %v", err)
	}
	if err := CheckDim(Sphere{}, 0); err == nil {
		t.Error("Zero dimension should be rejected")
	}
}
