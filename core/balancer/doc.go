// Package balancer assigns recurring relay work to weekly slots so workload
// stays under capacity thresholds. Business rules (pinned instances,
// synchronized groups, soft move requests) become MILP constraints; overage
// is absorbed through penalized slack so the program never goes infeasible
// from tight capacity alone. The solved program is mapped back to a
// suggested schedule with before/after comparison tables.
package balancer
