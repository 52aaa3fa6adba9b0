package balancer

// applyObjective attaches the scalar cost to the program:
//
//	penalty_total*sum(slack_total) + penalty_type*sum(slack_type)
//	+ cost_per_move*sum(move_indicator)
//
// The move indicator for member i is 1 - x[entity, current_week[i]], which is
// linear because x is binary: each member contributes a constant cost_per_move
// offset by -cost_per_move on its current-week variable. Members whose current
// week is not a candidate (a group window forced them out) pay the constant
// with no offset, which prices the unavoidable move correctly.
func applyObjective(p *program) {
	cfg := p.cfg

	for _, wc := range p.weeks {
		penTotal, penType := cfg.penaltiesFor(wc.week.IsHoliday)
		p.model.AddObjectiveTerm(wc.slackTotal, penTotal)
		p.model.AddObjectiveTerm(wc.slackType, penType)
	}

	for i := range p.entities {
		e := &p.entities[i]
		for _, m := range e.members {
			p.model.AddObjectiveConstant(cfg.CostPerMove)
			if v, ok := e.vars[m.CurrentWeek]; ok {
				p.model.AddObjectiveTerm(v, -cfg.CostPerMove)
			}
			// Soft request bias: discount the requested target so the solver
			// prefers it when hard constraints leave room. Requests are never
			// guaranteed.
			if cfg.RequestBias > 0 && m.HasRequest() && m.RequestedWeek != m.CurrentWeek {
				if v, ok := e.vars[m.RequestedWeek]; ok {
					p.model.AddObjectiveTerm(v, -cfg.RequestBias)
				}
			}
		}
	}
}
