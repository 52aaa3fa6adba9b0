package balancer

// EventKind labels solver progress events published on the run bus.
type EventKind string

const (
	// EventIncumbent fires whenever branch and bound finds a better
	// integral solution.
	EventIncumbent EventKind = "incumbent"
	// EventCompleted fires once per run with the final status.
	EventCompleted EventKind = "completed"
)

// Event is a solver progress notification.
type Event struct {
	RunID     string
	Kind      EventKind
	Status    string
	Objective float64
	Nodes     int
	Moved     int
}
