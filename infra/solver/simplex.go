package solver

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	core "github.com/gridwise/microdispatch/core/solver"
)

// simplexTol is the pivot tolerance passed to gonum's simplex.
const simplexTol = 1e-9

var (
	errLPInfeasible = errors.New("lp relaxation infeasible")
	errLPUnbounded  = errors.New("lp relaxation unbounded")
)

// solveRelaxation solves the LP relaxation of p with the variable bounds given
// by lo/hi (which reflect branching decisions on binaries). It returns the
// objective value without the problem offset and the primal values indexed as
// in p.Vars.
func solveRelaxation(p *core.Problem, lo, hi []float64) (float64, []float64, error) {
	n := len(p.Vars)

	c := make([]float64, n)
	copy(c, p.Objective)

	// Count inequality and equality rows. Variable bounds become inequality
	// rows because lp.Convert treats all variables as free.
	nIneq, nEq := 0, 0
	for i := 0; i < n; i++ {
		if !math.IsInf(hi[i], 1) {
			nIneq++
		}
		if !math.IsInf(lo[i], -1) {
			nIneq++
		}
	}
	for _, con := range p.Cons {
		if con.Sense == core.Equal {
			nEq++
		} else {
			nIneq++
		}
	}

	var g *mat.Dense
	var h []float64
	if nIneq > 0 {
		g = mat.NewDense(nIneq, n, nil)
		h = make([]float64, nIneq)
	}
	var a *mat.Dense
	var b []float64
	if nEq > 0 {
		a = mat.NewDense(nEq, n, nil)
		b = make([]float64, nEq)
	}

	ri, re := 0, 0
	for i := 0; i < n; i++ {
		if !math.IsInf(hi[i], 1) {
			g.Set(ri, i, 1)
			h[ri] = hi[i]
			ri++
		}
		if !math.IsInf(lo[i], -1) {
			g.Set(ri, i, -1)
			h[ri] = -lo[i]
			ri++
		}
	}
	for _, con := range p.Cons {
		switch con.Sense {
		case core.Equal:
			for _, t := range con.Terms {
				a.Set(re, t.Var, t.Coeff)
			}
			b[re] = con.RHS
			re++
		case core.LessEq:
			for _, t := range con.Terms {
				g.Set(ri, t.Var, t.Coeff)
			}
			h[ri] = con.RHS
			ri++
		case core.GreaterEq:
			for _, t := range con.Terms {
				g.Set(ri, t.Var, -t.Coeff)
			}
			h[ri] = -con.RHS
			ri++
		}
	}

	var gm, am mat.Matrix
	if g != nil {
		gm = g
	}
	if a != nil {
		am = a
	}
	cStd, aStd, bStd := lp.Convert(c, gm, h, am, b)
	obj, sol, err := lp.Simplex(cStd, aStd, bStd, simplexTol, nil)
	if err != nil {
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return 0, nil, errLPInfeasible
		case errors.Is(err, lp.ErrUnbounded):
			return 0, nil, errLPUnbounded
		default:
			return 0, nil, err
		}
	}

	// lp.Convert splits each free variable into positive and negative parts:
	// x[i] = sol[i] - sol[n+i].
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = sol[i] - sol[n+i]
	}
	return obj, x, nil
}
