package milp

import "fmt"

// VarKind distinguishes integrality requirements.
type VarKind int

const (
	// Binary variables take values in {0,1}.
	Binary VarKind = iota
	// Continuous variables are nonnegative reals with no upper bound.
	Continuous
)

// VarID references a variable within its model.
type VarID int

// Term is one coefficient*variable entry of a linear expression.
type Term struct {
	Var  VarID
	Coef float64
}

type variable struct {
	name  string
	kind  VarKind
	fixed bool
	value float64 // meaningful only when fixed
}

type constraint struct {
	name     string
	terms    []Term
	rhs      float64
	equality bool // true: == rhs, false: <= rhs
}

// Model is a mixed-integer linear program under construction. The zero value
// is not usable; create models with NewModel.
type Model struct {
	name     string
	vars     []variable
	cons     []constraint
	obj      []float64
	objConst float64
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{name: name}
}

// Name returns the model name used in diagnostics.
func (m *Model) Name() string { return m.name }

// NumVars returns the number of variables added so far.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints returns the number of constraints added so far.
func (m *Model) NumConstraints() int { return len(m.cons) }

// AddBinary adds a {0,1} variable.
func (m *Model) AddBinary(name string) VarID {
	m.vars = append(m.vars, variable{name: name, kind: Binary})
	m.obj = append(m.obj, 0)
	return VarID(len(m.vars) - 1)
}

// AddContinuous adds a nonnegative continuous variable.
func (m *Model) AddContinuous(name string) VarID {
	m.vars = append(m.vars, variable{name: name, kind: Continuous})
	m.obj = append(m.obj, 0)
	return VarID(len(m.vars) - 1)
}

// Fix pins a variable to the given value before solving. Fixed variables are
// substituted out of the relaxations, which keeps pinned assignments exact.
func (m *Model) Fix(v VarID, value float64) {
	m.vars[v].fixed = true
	m.vars[v].value = value
}

// AddEq adds the constraint sum(terms) == rhs.
func (m *Model) AddEq(name string, rhs float64, terms ...Term) {
	m.cons = append(m.cons, constraint{name: name, terms: terms, rhs: rhs, equality: true})
}

// AddLE adds the constraint sum(terms) <= rhs.
func (m *Model) AddLE(name string, rhs float64, terms ...Term) {
	m.cons = append(m.cons, constraint{name: name, terms: terms, rhs: rhs})
}

// AddObjectiveTerm adds coef*var to the objective. Repeated calls for the
// same variable accumulate.
func (m *Model) AddObjectiveTerm(v VarID, coef float64) {
	m.obj[v] += coef
}

// AddObjectiveConstant shifts the objective by a constant. The shift has no
// influence on the optimum but keeps reported objective values comparable to
// the source formulation.
func (m *Model) AddObjectiveConstant(c float64) {
	m.objConst += c
}

// VarName returns the name of the variable, for diagnostics.
func (m *Model) VarName(v VarID) string {
	if int(v) < 0 || int(v) >= len(m.vars) {
		return fmt.Sprintf("var(%d)", int(v))
	}
	return m.vars[v].name
}
