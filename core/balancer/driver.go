package balancer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/relayops/modbalance/core/logger"
	"github.com/relayops/modbalance/core/milp"
	"github.com/relayops/modbalance/core/model"
	"github.com/relayops/modbalance/internal/eventbus"
)

// Driver assembles the balancing program and runs the MILP solver. One
// driver value is safe for sequential runs; create separate drivers for
// concurrent parametrized runs.
type Driver struct {
	cfg Config
	log logger.Logger
	bus *eventbus.Bus[Event]
}

// New creates a driver for the given configuration. A nil logger disables
// logging.
func New(cfg Config, log logger.Logger) (*Driver, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("balancer config: %w", err)
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Driver{cfg: cfg, log: log}, nil
}

// SetEventBus attaches a bus receiving solver progress events.
func (d *Driver) SetEventBus(bus *eventbus.Bus[Event]) { d.bus = bus }

func (d *Driver) publish(e Event) {
	if d.bus != nil {
		d.bus.Publish(e)
	}
}

// Solve validates the input tables, builds the program and solves it.
// Failures are typed: *ModelConstructionError for malformed input,
// *InfeasibleError when hard constraints contradict, *SolverError when the
// solver itself fails. A feasible-but-unproven outcome is a success with
// Result.ProvenOptimal false.
func (d *Driver) Solve(instances []model.Instance, weeks []model.WeekSlot) (*Result, error) {
	runID := uuid.NewString()
	start := time.Now()

	if err := model.ValidateInstances(instances); err != nil {
		return nil, &ModelConstructionError{Err: err}
	}
	horizon, err := model.NewHorizon(weeks)
	if err != nil {
		return nil, &ModelConstructionError{Err: err}
	}

	prog, err := buildProgram(instances, horizon, d.cfg)
	if err != nil {
		return nil, err
	}
	applyObjective(prog)

	d.log.Infof("run %s: %d instances (%d fixed context), %d weeks, %d vars, %d constraints",
		runID, len(instances), len(prog.context), horizon.Len(),
		prog.model.NumVars(), prog.model.NumConstraints())

	opts := milp.Options{
		TimeLimit: time.Duration(d.cfg.SolverTimeLimitSeconds) * time.Second,
		RelGap:    d.cfg.GapTolerance,
		MaxNodes:  d.cfg.MaxNodes,
		OnIncumbent: func(obj float64, nodes int) {
			d.log.Debugf("run %s: incumbent %.3f after %d nodes", runID, obj, nodes)
			d.publish(Event{RunID: runID, Kind: EventIncumbent, Objective: obj, Nodes: nodes})
		},
	}
	sol, solveErr := milp.Solve(prog.model, opts)

	switch sol.Status {
	case milp.StatusOptimal, milp.StatusFeasible:
		res := extractResult(runID, prog, sol)
		res.SolveDuration = time.Since(start)
		if !res.ProvenOptimal {
			d.log.Warnf("run %s: time budget hit, best incumbent kept (gap %.2f%%)", runID, sol.Gap*100)
		}
		d.log.Infof("run %s: %s, objective %.3f, %d moved, %d nodes in %s",
			runID, sol.Status, res.Objective, res.MovedCount, sol.Nodes, res.SolveDuration.Round(time.Millisecond))
		d.publish(Event{RunID: runID, Kind: EventCompleted, Status: sol.Status.String(),
			Objective: res.Objective, Nodes: sol.Nodes, Moved: res.MovedCount})
		return res, nil

	case milp.StatusInfeasible:
		ierr := diagnoseInfeasible(prog)
		d.log.Errorf("run %s: %v", runID, ierr)
		d.publish(Event{RunID: runID, Kind: EventCompleted, Status: sol.Status.String(), Nodes: sol.Nodes})
		return nil, ierr

	case milp.StatusUnbounded:
		d.publish(Event{RunID: runID, Kind: EventCompleted, Status: sol.Status.String(), Nodes: sol.Nodes})
		return nil, &SolverError{Stage: "branch-and-bound", Err: fmt.Errorf("model unbounded")}

	default:
		d.publish(Event{RunID: runID, Kind: EventCompleted, Status: sol.Status.String(), Nodes: sol.Nodes})
		return nil, &SolverError{Stage: "branch-and-bound", Err: solveErr}
	}
}

// diagnoseInfeasible points at the constraint family most likely behind an
// infeasible outcome. Capacity is soft (slack always absorbs overage), so
// contradictions come from pinning and group synchronization.
func diagnoseInfeasible(p *program) *InfeasibleError {
	pinnedHours := make(map[int]float64)
	pinnedCount := 0
	for i := range p.entities {
		e := &p.entities[i]
		if e.pinned {
			pinnedHours[e.pinnedWeek] += e.hours
			pinnedCount++
		}
	}
	heaviestWeek, heaviest := 0, 0.0
	for wk, h := range pinnedHours {
		if h > heaviest {
			heaviestWeek, heaviest = wk, h
		}
	}
	detail := fmt.Sprintf("%d pinned entities", pinnedCount)
	if heaviest > 0 {
		detail = fmt.Sprintf("%s; heaviest pinned week %d carries %.1f hours", detail, heaviestWeek, heaviest)
	}
	return &InfeasibleError{Family: "cannot-move/group-sync", Detail: detail}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
