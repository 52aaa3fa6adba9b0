package balancer

import "fmt"

// ModelConstructionError reports malformed input detected before the solver
// is invoked: duplicate instance IDs, negative hours, contradictory flags.
type ModelConstructionError struct {
	Err error
}

func (e *ModelConstructionError) Error() string {
	return fmt.Sprintf("model construction: %v", e.Err)
}

func (e *ModelConstructionError) Unwrap() error { return e.Err }

// InfeasibleError reports that no assignment satisfies the hard constraints.
// Family names the constraint family suspected of causing the conflict.
type InfeasibleError struct {
	Family string
	Detail string
}

func (e *InfeasibleError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("infeasible: %s", e.Family)
	}
	return fmt.Sprintf("infeasible (%s): %s", e.Family, e.Detail)
}

// SolverError reports a failure of the underlying solver. No partial result
// survives it.
type SolverError struct {
	Stage string
	Err   error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("solver %s: %v", e.Stage, e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }
