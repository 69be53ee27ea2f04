// Package solver defines a normalized mixed-integer linear program form and the
// contract implemented by MILP backends.
package solver

import (
	"context"
	"math"
	"time"
)

// VarType distinguishes continuous from binary decision variables.
type VarType int

const (
	Continuous VarType = iota
	Binary
)

// Variable is a bounded decision variable. Binary variables must have bounds
// within [0,1].
type Variable struct {
	Name string
	Lo   float64
	Hi   float64
	Type VarType
}

// Sense is the relation of a linear constraint.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

// Term is one coefficient of a linear expression, referencing a variable by
// its index in Problem.Vars.
type Term struct {
	Var   int
	Coeff float64
}

// Constraint is a sparse linear constraint: sum(terms) <sense> rhs.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Problem is a minimization MILP in normalized form. Objective holds one cost
// coefficient per variable; Offset is a constant added to the objective value.
type Problem struct {
	Vars      []Variable
	Cons      []Constraint
	Objective []float64
	Offset    float64
}

// AddVar appends a continuous variable and returns its index.
func (p *Problem) AddVar(name string, lo, hi float64) int {
	p.Vars = append(p.Vars, Variable{Name: name, Lo: lo, Hi: hi, Type: Continuous})
	return len(p.Vars) - 1
}

// AddBinary appends a binary variable and returns its index.
func (p *Problem) AddBinary(name string) int {
	p.Vars = append(p.Vars, Variable{Name: name, Lo: 0, Hi: 1, Type: Binary})
	return len(p.Vars) - 1
}

// AddConstraint appends a constraint.
func (p *Problem) AddConstraint(name string, terms []Term, sense Sense, rhs float64) {
	p.Cons = append(p.Cons, Constraint{Name: name, Terms: terms, Sense: sense, RHS: rhs})
}

// SetObjective sets the cost coefficient of a variable. The coefficient slice
// grows as needed.
func (p *Problem) SetObjective(v int, coeff float64) {
	for len(p.Objective) < len(p.Vars) {
		p.Objective = append(p.Objective, 0)
	}
	p.Objective[v] = coeff
}

// NumBinaries returns the number of binary variables.
func (p *Problem) NumBinaries() int {
	n := 0
	for _, v := range p.Vars {
		if v.Type == Binary {
			n++
		}
	}
	return n
}

// Options controls a solve invocation.
type Options struct {
	// RelGap is the relative MIP gap at which the search stops and the
	// incumbent is declared optimal.
	RelGap float64
	// TimeLimit bounds the wall-clock solve time. Zero means no limit beyond
	// the context deadline.
	TimeLimit time.Duration
	// MaxNodes bounds the branch-and-bound tree size. Zero means unlimited.
	MaxNodes int
}

// DefaultOptions returns the options used when the caller passes the zero
// value: a tight gap and a generous time limit.
func DefaultOptions() Options {
	return Options{RelGap: 1e-6, TimeLimit: 30 * time.Second}
}

// Solver solves a normalized MILP. Implementations must honor ctx cancellation
// and the options' time limit, returning the best incumbent found so far with
// StatusFeasible when interrupted.
type Solver interface {
	Solve(ctx context.Context, p *Problem, opts Options) (*Solution, error)
}

// Inf is the bound used for effectively unbounded variables.
var Inf = math.Inf(1)
