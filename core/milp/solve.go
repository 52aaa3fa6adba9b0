package milp

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Status describes the outcome of a solve.
type Status int

const (
	// StatusOptimal means the incumbent is optimal within the gap tolerance.
	StatusOptimal Status = iota
	// StatusFeasible means the time budget ran out before optimality was
	// proven; the best incumbent found is returned.
	StatusFeasible
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
	// StatusUnbounded means the objective can decrease without limit.
	StatusUnbounded
	// StatusError means the underlying LP solver failed.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Options bound the branch and bound search.
type Options struct {
	// TimeLimit is the wall-clock budget. Defaults to 300s.
	TimeLimit time.Duration
	// RelGap terminates the search once (incumbent-bound)/|incumbent| drops
	// below this value. Defaults to 1%.
	RelGap float64
	// IntTol is the distance from an integer below which a relaxation value
	// counts as integral. Defaults to 1e-6.
	IntTol float64
	// MaxNodes caps the number of explored nodes. Zero means unlimited.
	MaxNodes int
	// OnIncumbent, when set, is invoked every time a better integral solution
	// is found.
	OnIncumbent func(objective float64, nodes int)
}

func (o *Options) setDefaults() {
	if o.TimeLimit <= 0 {
		o.TimeLimit = 300 * time.Second
	}
	if o.RelGap <= 0 {
		o.RelGap = 0.01
	}
	if o.IntTol <= 0 {
		o.IntTol = 1e-6
	}
}

// Solution is the outcome of a solve. Values is only populated for
// StatusOptimal and StatusFeasible.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
	Gap       float64
	Nodes     int
}

const feasTol = 1e-7

// lpSolve points to the routine used for LP relaxations. Tests override it to
// simulate solver failures.
var lpSolve = func(c []float64, a mat.Matrix, b []float64) ([]float64, error) {
	_, x, err := lp.Simplex(c, a, b, 1e-7, nil)
	return x, err
}

type fixSet struct {
	fixed []bool
	value []float64
}

func (f fixSet) clone() fixSet {
	c := fixSet{fixed: make([]bool, len(f.fixed)), value: make([]float64, len(f.value))}
	copy(c.fixed, f.fixed)
	copy(c.value, f.value)
	return c
}

// relax solves the LP relaxation of the model under the given fixings.
// Fixed variables are substituted out, so the LP only carries free columns.
// The returned objective includes the model's constant shift and the fixed
// variables' contributions.
func (m *Model) relax(f fixSet) ([]float64, float64, error) {
	n := len(m.vars)
	col := make([]int, n)
	nFree := 0
	for i := range m.vars {
		if f.fixed[i] {
			col[i] = -1
			continue
		}
		col[i] = nFree
		nFree++
	}

	type row struct {
		coefs map[int]float64
		rhs   float64
		eq    bool
	}
	var rows []row
	for _, c := range m.cons {
		r := row{coefs: make(map[int]float64, len(c.terms)), rhs: c.rhs, eq: c.equality}
		for _, t := range c.terms {
			if f.fixed[t.Var] {
				r.rhs -= t.Coef * f.value[t.Var]
				continue
			}
			r.coefs[col[t.Var]] += t.Coef
		}
		if len(r.coefs) == 0 {
			// Fully substituted row: either trivially satisfied or the
			// fixings contradict each other.
			if r.eq && math.Abs(r.rhs) > feasTol {
				return nil, 0, lp.ErrInfeasible
			}
			if !r.eq && r.rhs < -feasTol {
				return nil, 0, lp.ErrInfeasible
			}
			continue
		}
		rows = append(rows, r)
	}
	for i, v := range m.vars {
		if v.kind == Binary && !f.fixed[i] {
			rows = append(rows, row{coefs: map[int]float64{col[i]: 1}, rhs: 1})
		}
	}

	shift := m.objConst
	for i := range m.vars {
		if f.fixed[i] {
			shift += m.obj[i] * f.value[i]
		}
	}
	if nFree == 0 {
		vals := append([]float64(nil), f.value...)
		return vals, shift, nil
	}

	nSurplus := 0
	for _, r := range rows {
		if !r.eq {
			nSurplus++
		}
	}
	cols := nFree + nSurplus
	a := mat.NewDense(len(rows), cols, nil)
	b := make([]float64, len(rows))
	c := make([]float64, cols)
	for i := range m.vars {
		if col[i] >= 0 {
			c[col[i]] = m.obj[i]
		}
	}
	surplus := nFree
	for ri, r := range rows {
		for ci, coef := range r.coefs {
			a.Set(ri, ci, coef)
		}
		b[ri] = r.rhs
		if !r.eq {
			a.Set(ri, surplus, 1)
			surplus++
		}
	}

	sol, err := lpSolve(c, a, b)
	if err != nil {
		return nil, 0, err
	}
	vals := make([]float64, n)
	obj := shift
	for i := range m.vars {
		if f.fixed[i] {
			vals[i] = f.value[i]
			continue
		}
		vals[i] = sol[col[i]]
		obj += m.obj[i] * vals[i]
	}
	return vals, obj, nil
}

// fractionalVar returns the most fractional free binary, or -1 when the
// relaxation is integral within tol.
func (m *Model) fractionalVar(vals []float64, tol float64) int {
	best := -1
	bestDist := tol
	for i, v := range m.vars {
		if v.kind != Binary {
			continue
		}
		dist := math.Abs(vals[i] - math.Round(vals[i]))
		if dist > bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

type bbNode struct {
	fixes fixSet
	vals  []float64
	bound float64
}

type nodeHeap []*bbNode

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].bound < h[j].bound }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)         { *h = append(*h, x.(*bbNode)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	nd := old[n-1]
	*h = old[:n-1]
	return nd
}

func relGap(incumbent, bound float64) float64 {
	return (incumbent - bound) / math.Max(1, math.Abs(incumbent))
}

// Solve runs branch and bound on the model. The returned error is non-nil
// only for StatusError; all other outcomes are communicated via the status.
func Solve(m *Model, opts Options) (Solution, error) {
	opts.setDefaults()
	deadline := time.Now().Add(opts.TimeLimit)

	base := fixSet{fixed: make([]bool, len(m.vars)), value: make([]float64, len(m.vars))}
	for i, v := range m.vars {
		if v.fixed {
			base.fixed[i] = true
			base.value[i] = v.value
		}
	}

	vals, bound, err := m.relax(base)
	nodes := 1
	if err != nil {
		return classifyLPError(err, nodes)
	}

	best := math.Inf(1)
	var bestVals []float64
	record := func(obj float64, v []float64) {
		if obj < best {
			best = obj
			bestVals = v
			if opts.OnIncumbent != nil {
				opts.OnIncumbent(obj, nodes)
			}
		}
	}

	h := &nodeHeap{{fixes: base, vals: vals, bound: bound}}
	heap.Init(h)

	for h.Len() > 0 {
		if time.Now().After(deadline) || (opts.MaxNodes > 0 && nodes >= opts.MaxNodes) {
			if bestVals == nil {
				return Solution{Status: StatusError, Nodes: nodes},
					fmt.Errorf("model %s: budget exhausted before first incumbent", m.name)
			}
			return Solution{
				Status:    StatusFeasible,
				Objective: best,
				Values:    bestVals,
				Gap:       relGap(best, (*h)[0].bound),
				Nodes:     nodes,
			}, nil
		}

		nd := heap.Pop(h).(*bbNode)
		if bestVals != nil {
			// Best-first search: the popped bound is the global lower bound.
			gap := relGap(best, nd.bound)
			if nd.bound >= best-feasTol || gap <= opts.RelGap {
				return Solution{Status: StatusOptimal, Objective: best, Values: bestVals, Gap: gap, Nodes: nodes}, nil
			}
		}

		branch := m.fractionalVar(nd.vals, opts.IntTol)
		if branch < 0 {
			record(nd.bound, nd.vals)
			continue
		}

		for _, val := range []float64{0, 1} {
			child := nd.fixes.clone()
			child.fixed[branch] = true
			child.value[branch] = val
			cvals, cobj, cerr := m.relax(child)
			nodes++
			if cerr != nil {
				if errors.Is(cerr, lp.ErrInfeasible) {
					continue
				}
				sol, serr := classifyLPError(cerr, nodes)
				return sol, serr
			}
			if bestVals != nil && cobj >= best-feasTol {
				continue
			}
			if m.fractionalVar(cvals, opts.IntTol) < 0 {
				record(cobj, cvals)
				continue
			}
			heap.Push(h, &bbNode{fixes: child, vals: cvals, bound: cobj})
		}
	}

	if bestVals == nil {
		return Solution{Status: StatusInfeasible, Nodes: nodes}, nil
	}
	return Solution{Status: StatusOptimal, Objective: best, Values: bestVals, Nodes: nodes}, nil
}

func classifyLPError(err error, nodes int) (Solution, error) {
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return Solution{Status: StatusInfeasible, Nodes: nodes}, nil
	case errors.Is(err, lp.ErrUnbounded):
		return Solution{Status: StatusUnbounded, Nodes: nodes}, nil
	default:
		return Solution{Status: StatusError, Nodes: nodes}, fmt.Errorf("lp relaxation: %w", err)
	}
}
