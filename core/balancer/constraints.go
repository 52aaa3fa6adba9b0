package balancer

import (
	"fmt"
	"sort"

	"github.com/relayops/modbalance/core/milp"
	"github.com/relayops/modbalance/core/model"
)

// entity is one movable unit of the program: a standalone instance, or a
// synchronized group collapsed onto a single representative variable set so
// group cohesion costs one assignment row instead of pairwise equalities.
type entity struct {
	id         string
	members    []model.Instance
	pinned     bool
	pinnedWeek int
	candidates []int              // candidate week indexes, ascending
	vars       map[int]milp.VarID // week index -> assignment variable
	hours      float64            // summed member hours per assigned week
	typeHours  float64            // portion belonging to the limited location type
}

// weekCapacity pairs a horizon week with its resolved limits and slack
// variables. Slack is the only channel through which a limit can be exceeded.
type weekCapacity struct {
	week       model.WeekSlot
	totalLimit float64
	typeLimit  float64
	slackTotal milp.VarID
	slackType  milp.VarID
}

// program is the assembled MILP plus the bookkeeping needed to map a solved
// variable vector back onto the schedule.
type program struct {
	model    *milp.Model
	entities []entity
	weeks    []weekCapacity
	context  []model.Instance // current week outside the horizon, never re-assigned
	horizon  *model.Horizon
	cfg      Config
}

// buildProgram translates the validated input tables into the full
// constraint set: assignment, cannot-move pinning, group synchronization and
// soft capacity rows. Construction-time contradictions (conflicting pins
// inside a group, empty candidate windows) surface as InfeasibleError before
// the solver runs.
func buildProgram(instances []model.Instance, horizon *model.Horizon, cfg Config) (*program, error) {
	p := &program{model: milp.NewModel("relay-balance"), horizon: horizon, cfg: cfg}

	entities, context, err := collapseEntities(instances, horizon, cfg)
	if err != nil {
		return nil, err
	}
	p.entities = entities
	p.context = context

	for i := range p.entities {
		e := &p.entities[i]
		e.vars = make(map[int]milp.VarID, len(e.candidates))
		terms := make([]milp.Term, 0, len(e.candidates))
		for _, wk := range e.candidates {
			v := p.model.AddBinary(fmt.Sprintf("x[%s,%d]", e.id, wk))
			e.vars[wk] = v
			terms = append(terms, milp.Term{Var: v, Coef: 1})
		}
		// Exactly one assigned week per entity. Pinned entities keep their
		// single candidate fixed; the row then degenerates to 1 == 1.
		p.model.AddEq(fmt.Sprintf("assign[%s]", e.id), 1, terms...)
		if e.pinned {
			p.model.Fix(e.vars[e.pinnedWeek], 1)
		}
	}

	for _, w := range horizon.Weeks() {
		totalLimit, typeLimit := cfg.thresholdsFor(w.IsHoliday)
		if w.TotalHoursThreshold > 0 {
			totalLimit = w.TotalHoursThreshold
		}
		if w.TypeHoursThreshold > 0 {
			typeLimit = w.TypeHoursThreshold
		}
		wc := weekCapacity{
			week:       w,
			totalLimit: totalLimit,
			typeLimit:  typeLimit,
			slackTotal: p.model.AddContinuous(fmt.Sprintf("slack_total[%d]", w.WeekIndex)),
			slackType:  p.model.AddContinuous(fmt.Sprintf("slack_type[%d]", w.WeekIndex)),
		}

		totalTerms := []milp.Term{{Var: wc.slackTotal, Coef: -1}}
		typeTerms := []milp.Term{{Var: wc.slackType, Coef: -1}}
		for i := range p.entities {
			e := &p.entities[i]
			v, ok := e.vars[w.WeekIndex]
			if !ok {
				continue
			}
			if e.hours > 0 {
				totalTerms = append(totalTerms, milp.Term{Var: v, Coef: e.hours})
			}
			if e.typeHours > 0 {
				typeTerms = append(typeTerms, milp.Term{Var: v, Coef: e.typeHours})
			}
		}
		p.model.AddLE(fmt.Sprintf("cap_total[%d]", w.WeekIndex), wc.totalLimit, totalTerms...)
		p.model.AddLE(fmt.Sprintf("cap_type[%d]", w.WeekIndex), wc.typeLimit, typeTerms...)

		p.weeks = append(p.weeks, wc)
	}

	return p, nil
}

// collapseEntities partitions the instances into movable entities and fixed
// context, merging group members onto one representative.
func collapseEntities(instances []model.Instance, horizon *model.Horizon, cfg Config) ([]entity, []model.Instance, error) {
	var context []model.Instance
	var singles []model.Instance
	groups := make(map[string][]model.Instance)
	var groupOrder []string

	for _, in := range instances {
		if !horizon.Contains(in.CurrentWeek) {
			// History rows stay where they are and touch no constraint.
			context = append(context, in)
			continue
		}
		if in.GroupID == "" {
			singles = append(singles, in)
			continue
		}
		if _, ok := groups[in.GroupID]; !ok {
			groupOrder = append(groupOrder, in.GroupID)
		}
		groups[in.GroupID] = append(groups[in.GroupID], in)
	}

	entities := make([]entity, 0, len(singles)+len(groups))
	for _, in := range singles {
		e, err := newEntity(in.InstanceID, []model.Instance{in}, horizon, cfg)
		if err != nil {
			return nil, nil, err
		}
		entities = append(entities, e)
	}
	for _, gid := range groupOrder {
		e, err := newEntity("group:"+gid, groups[gid], horizon, cfg)
		if err != nil {
			return nil, nil, err
		}
		entities = append(entities, e)
	}
	return entities, context, nil
}

func newEntity(id string, members []model.Instance, horizon *model.Horizon, cfg Config) (entity, error) {
	e := entity{id: id, members: members}
	for _, m := range members {
		e.hours += m.HoursRequired
		if cfg.LimitedLocationType != "" && m.LocationType == cfg.LimitedLocationType {
			e.typeHours += m.HoursRequired
		}
	}

	pinWeek, pinCount := 0, 0
	for _, m := range members {
		if !m.CannotMove {
			continue
		}
		if pinCount > 0 && m.CurrentWeek != pinWeek {
			return entity{}, &InfeasibleError{
				Family: "cannot-move/group-sync",
				Detail: fmt.Sprintf("%s: members pinned to weeks %d and %d", id, pinWeek, m.CurrentWeek),
			}
		}
		pinWeek = m.CurrentWeek
		pinCount++
	}
	if pinCount > 0 {
		e.pinned = true
		e.pinnedWeek = pinWeek
		e.candidates = []int{pinWeek}
		return e, nil
	}

	for _, w := range horizon.Weeks() {
		if inWindow(w.WeekIndex, members, cfg.CandidateWeekWindow) {
			e.candidates = append(e.candidates, w.WeekIndex)
		}
	}
	if len(e.candidates) == 0 {
		return entity{}, &InfeasibleError{
			Family: "group-sync/window",
			Detail: fmt.Sprintf("%s: no week satisfies every member's candidate window", id),
		}
	}
	sort.Ints(e.candidates)
	return e, nil
}

// inWindow reports whether the week is a valid target for every member under
// the candidate-week window. A zero window means the full horizon.
func inWindow(weekIndex int, members []model.Instance, window int) bool {
	if window == 0 {
		return true
	}
	for _, m := range members {
		d := weekIndex - m.CurrentWeek
		if d < -window || d > window {
			return false
		}
	}
	return true
}
