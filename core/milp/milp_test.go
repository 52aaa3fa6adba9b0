package milp

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSolveIntegralRelaxation(t *testing.T) {
	// min -5x1 -4x2 -3x3 over binaries with packing rows. The optimum is
	// x1=x2=1, x3=0 with value -9.
	m := NewModel("packing")
	x1 := m.AddBinary("x1")
	x2 := m.AddBinary("x2")
	x3 := m.AddBinary("x3")
	m.AddLE("r1", 5, Term{x1, 2}, Term{x2, 3}, Term{x3, 1})
	m.AddLE("r2", 11, Term{x1, 4}, Term{x2, 1}, Term{x3, 2})
	m.AddLE("r3", 8, Term{x1, 3}, Term{x2, 4}, Term{x3, 2})
	m.AddObjectiveTerm(x1, -5)
	m.AddObjectiveTerm(x2, -4)
	m.AddObjectiveTerm(x3, -3)

	sol, err := Solve(m, Options{})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("status = %v, want optimal", sol.Status)
	}
	if math.Abs(sol.Objective-(-9)) > 1e-6 {
		t.Fatalf("objective = %v, want -9", sol.Objective)
	}
	want := []float64{1, 1, 0}
	for i, w := range want {
		if math.Abs(sol.Values[i]-w) > 1e-6 {
			t.Fatalf("x%d = %v, want %v", i+1, sol.Values[i], w)
		}
	}
}

func TestSolveBranches(t *testing.T) {
	// The root relaxation of min -x with 2x <= 1 sits at x=0.5, so the
	// integer optimum x=0 requires branching.
	m := NewModel("fractional")
	x := m.AddBinary("x")
	m.AddLE("cap", 1, Term{x, 2})
	m.AddObjectiveTerm(x, -1)

	sol, err := Solve(m, Options{})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("status = %v, want optimal", sol.Status)
	}
	if math.Abs(sol.Objective) > 1e-6 {
		t.Fatalf("objective = %v, want 0", sol.Objective)
	}
	if sol.Nodes < 2 {
		t.Fatalf("nodes = %d, expected branching", sol.Nodes)
	}
}

func TestSolveFixedVariable(t *testing.T) {
	m := NewModel("fixed")
	x1 := m.AddBinary("x1")
	x2 := m.AddBinary("x2")
	m.AddEq("assign", 1, Term{x1, 1}, Term{x2, 1})
	m.AddObjectiveTerm(x2, -1)
	// Without the fix the optimum would pick x2.
	m.Fix(x1, 1)

	sol, err := Solve(m, Options{})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("status = %v, want optimal", sol.Status)
	}
	if sol.Values[x1] != 1 || math.Abs(sol.Values[x2]) > 1e-6 {
		t.Fatalf("values = %v, want [1 0]", sol.Values)
	}
}

func TestSolveObjectiveConstant(t *testing.T) {
	m := NewModel("shift")
	x := m.AddBinary("x")
	m.AddEq("assign", 1, Term{x, 1})
	m.AddObjectiveTerm(x, 2)
	m.AddObjectiveConstant(5)

	sol, err := Solve(m, Options{})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if math.Abs(sol.Objective-7) > 1e-6 {
		t.Fatalf("objective = %v, want 7", sol.Objective)
	}
}

func TestSolveInfeasible(t *testing.T) {
	m := NewModel("contradiction")
	x1 := m.AddBinary("x1")
	x2 := m.AddBinary("x2")
	m.AddEq("sum", 3, Term{x1, 1}, Term{x2, 1})

	sol, err := Solve(m, Options{})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if sol.Status != StatusInfeasible {
		t.Fatalf("status = %v, want infeasible", sol.Status)
	}
}

func TestSolveContradictoryFixes(t *testing.T) {
	m := NewModel("pinned")
	x := m.AddBinary("x")
	m.AddEq("force", 1, Term{x, 1})
	m.Fix(x, 0)

	sol, err := Solve(m, Options{})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if sol.Status != StatusInfeasible {
		t.Fatalf("status = %v, want infeasible", sol.Status)
	}
}

func TestSolveLPFailure(t *testing.T) {
	orig := lpSolve
	defer func() { lpSolve = orig }()
	lpSolve = func([]float64, mat.Matrix, []float64) ([]float64, error) {
		return nil, errors.New("singular basis")
	}

	m := NewModel("broken")
	x := m.AddBinary("x")
	m.AddLE("cap", 1, Term{x, 1})
	m.AddObjectiveTerm(x, -1)

	sol, err := Solve(m, Options{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if sol.Status != StatusError {
		t.Fatalf("status = %v, want error", sol.Status)
	}
}

func TestSolveBudgetBeforeIncumbent(t *testing.T) {
	m := NewModel("fractional")
	x := m.AddBinary("x")
	m.AddLE("cap", 1, Term{x, 2})
	m.AddObjectiveTerm(x, -1)

	sol, err := Solve(m, Options{MaxNodes: 1})
	if err == nil {
		t.Fatal("expected an error when the budget ends with no incumbent")
	}
	if sol.Status != StatusError {
		t.Fatalf("status = %v, want error", sol.Status)
	}
}

func TestSolveIncumbentCallback(t *testing.T) {
	m := NewModel("callback")
	x1 := m.AddBinary("x1")
	x2 := m.AddBinary("x2")
	m.AddEq("assign", 1, Term{x1, 1}, Term{x2, 1})
	m.AddObjectiveTerm(x1, 3)
	m.AddObjectiveTerm(x2, 1)

	var calls int
	var last float64
	_, err := Solve(m, Options{OnIncumbent: func(obj float64, nodes int) {
		calls++
		last = obj
	}})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if calls == 0 {
		t.Fatal("incumbent callback never fired")
	}
	if math.Abs(last-1) > 1e-6 {
		t.Fatalf("last incumbent = %v, want 1", last)
	}
}

func TestSolveFeasibleOnBudget(t *testing.T) {
	// The root relaxation of min -x1-x2 with 2x1+2x2 <= 3 is fractional.
	// Branching finds the incumbent -1 in one child and leaves a fractional
	// node with bound -1.5 open; a two-node cap ends the search there with
	// the incumbent and a positive gap.
	m := NewModel("budget")
	x1 := m.AddBinary("x1")
	x2 := m.AddBinary("x2")
	m.AddLE("cap", 3, Term{x1, 2}, Term{x2, 2})
	m.AddObjectiveTerm(x1, -1)
	m.AddObjectiveTerm(x2, -1)

	sol, err := Solve(m, Options{MaxNodes: 2})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if sol.Status != StatusFeasible {
		t.Fatalf("status = %v, want feasible", sol.Status)
	}
	if math.Abs(sol.Objective-(-1)) > 1e-6 {
		t.Fatalf("objective = %v, want -1", sol.Objective)
	}
	if sol.Gap <= 0 {
		t.Fatalf("gap = %v, want > 0", sol.Gap)
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusOptimal:    "optimal",
		StatusFeasible:   "feasible",
		StatusInfeasible: "infeasible",
		StatusUnbounded:  "unbounded",
		StatusError:      "error",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
}
