package optimizer

import (
	"fmt"
	"strings"
)

// InfeasibleModelError reports that the solver proved no feasible dispatch
// exists for the given inputs. SuspectHours lists the hours most likely to
// have caused it, derived from capacity arithmetic on the inputs.
type InfeasibleModelError struct {
	SuspectHours []int
	Hint         string
}

func (e *InfeasibleModelError) Error() string {
	var b strings.Builder
	b.WriteString("dispatch model infeasible")
	if len(e.SuspectHours) > 0 {
		fmt.Fprintf(&b, ": suspect hours %v", e.SuspectHours)
	}
	if e.Hint != "" {
		b.WriteString(": ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// InternalConsistencyError reports that a solver solution violated a model
// invariant beyond tolerance. This is always a defect in the model or solver,
// never a user-facing infeasibility.
type InternalConsistencyError struct {
	Hour   int
	Check  string
	Detail string
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency: %s violated at hour %d: %s", e.Check, e.Hour, e.Detail)
}
