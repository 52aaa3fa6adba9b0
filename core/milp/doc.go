// Package milp builds and solves small mixed-integer linear programs.
// Models are assembled from binary and continuous variables, linear
// equality/inequality constraints and a linear objective to minimize.
// LP relaxations are solved with gonum's simplex; integrality is enforced
// by branch and bound with a wall-clock budget and a relative gap tolerance.
package milp
