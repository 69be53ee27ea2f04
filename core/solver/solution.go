package solver

// Status indicates the outcome of a solve.
type Status int

const (
	// StatusOptimal means the incumbent is proven optimal within the gap.
	StatusOptimal Status = iota
	// StatusFeasible means an incumbent exists but the gap was not closed
	// within the node or time budget.
	StatusFeasible
	// StatusInfeasible means the model has no feasible solution.
	StatusInfeasible
	// StatusUnbounded means the relaxation is unbounded, which for a properly
	// bounded model indicates a formulation defect.
	StatusUnbounded
	// StatusError means the solver failed internally.
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
	default:
		return "error"
	}
}

// Solution contains the results from solving a Problem.
type Solution struct {
	Status Status

	// Values contains the primal value of each variable, indexed as in
	// Problem.Vars. Only populated when HasSolution reports true.
	Values []float64

	// Objective is the objective value at the solution, including the
	// problem's constant offset.
	Objective float64

	// Gap is the relative gap between the incumbent and the best bound.
	Gap float64

	// Nodes is the number of branch-and-bound nodes explored.
	Nodes int
}

// IsOptimal returns true if the solution is proven optimal.
func (s *Solution) IsOptimal() bool { return s.Status == StatusOptimal }

// IsInfeasible returns true if the model is infeasible.
func (s *Solution) IsInfeasible() bool { return s.Status == StatusInfeasible }

// HasSolution returns true if Values holds a feasible assignment.
func (s *Solution) HasSolution() bool {
	return s.Status == StatusOptimal || s.Status == StatusFeasible
}

// Value returns the solution value for a variable by index. Returns 0 if the
// index is out of range.
func (s *Solution) Value(index int) float64 {
	if index < 0 || index >= len(s.Values) {
		return 0
	}
	return s.Values[index]
}
