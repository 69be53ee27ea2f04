// Package solver implements the MILP backend as a branch-and-bound search over
// LP relaxations solved with gonum's simplex.
package solver

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gridwise/microdispatch/core/solver"
	"github.com/gridwise/microdispatch/infra/logger"
)

// intTol is the tolerance under which a relaxed binary counts as integral.
const intTol = 1e-6

// ErrNoIncumbent is returned when the search is interrupted before any
// feasible solution was found.
var ErrNoIncumbent = errors.New("solve interrupted before a feasible solution was found")

// BranchBound is a best-bound branch-and-bound MILP solver. Each instance is
// stateless across Solve calls and safe for concurrent use.
type BranchBound struct {
	log logger.Logger
}

// New returns a BranchBound solver logging through log. A nil log disables
// logging.
func New(log logger.Logger) *BranchBound {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &BranchBound{log: log}
}

type node struct {
	lo, hi []float64
	bound  float64
	values []float64
}

type nodeHeap []*node

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].bound < h[j].bound }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(*node)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// Solve implements solver.Solver.
func (s *BranchBound) Solve(ctx context.Context, p *solver.Problem, opts solver.Options) (*solver.Solution, error) {
	if opts.RelGap <= 0 {
		opts.RelGap = solver.DefaultOptions().RelGap
	}
	var deadline time.Time
	if opts.TimeLimit > 0 {
		deadline = time.Now().Add(opts.TimeLimit)
	}

	binIdx := make([]int, 0, p.NumBinaries())
	lo := make([]float64, len(p.Vars))
	hi := make([]float64, len(p.Vars))
	for i, v := range p.Vars {
		lo[i], hi[i] = v.Lo, v.Hi
		if v.Type == solver.Binary {
			binIdx = append(binIdx, i)
		}
	}

	rootObj, rootX, err := solveRelaxation(p, lo, hi)
	if errors.Is(err, errLPInfeasible) {
		return &solver.Solution{Status: solver.StatusInfeasible}, nil
	}
	if errors.Is(err, errLPUnbounded) {
		return &solver.Solution{Status: solver.StatusUnbounded}, nil
	}
	if err != nil {
		return &solver.Solution{Status: solver.StatusError}, fmt.Errorf("root relaxation: %w", err)
	}

	var (
		incumbent    []float64
		incumbentObj = math.Inf(1)
		nodes        = 1
	)

	open := &nodeHeap{{lo: lo, hi: hi, bound: rootObj, values: rootX}}
	heap.Init(open)

	// Cheap rounding heuristic to seed the incumbent so that gap-based
	// termination can kick in early.
	if x, obj, ok := s.roundBinaries(p, lo, hi, binIdx, rootX); ok {
		incumbent, incumbentObj = x, obj
		nodes++
	}

	interrupted := func() bool {
		if ctx.Err() != nil {
			return true
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return true
		}
		return opts.MaxNodes > 0 && nodes >= opts.MaxNodes
	}

	bestBound := rootObj
	for open.Len() > 0 {
		if interrupted() {
			return s.interruptedSolution(ctx, p, incumbent, incumbentObj, bestBound, nodes)
		}

		nd := heap.Pop(open).(*node)
		bestBound = nd.bound
		if nd.bound >= incumbentObj-opts.RelGap*math.Max(1, math.Abs(incumbentObj)) {
			// The best remaining bound cannot improve the incumbent beyond
			// the gap; the incumbent is optimal within tolerance.
			break
		}

		frac := mostFractional(binIdx, nd.values)
		if frac < 0 {
			if nd.bound < incumbentObj {
				incumbent, incumbentObj = nd.values, nd.bound
			}
			continue
		}

		for _, fix := range []float64{0, 1} {
			childLo := append([]float64(nil), nd.lo...)
			childHi := append([]float64(nil), nd.hi...)
			childLo[frac], childHi[frac] = fix, fix
			obj, x, err := solveRelaxation(p, childLo, childHi)
			nodes++
			if errors.Is(err, errLPInfeasible) {
				continue
			}
			if errors.Is(err, errLPUnbounded) {
				return &solver.Solution{Status: solver.StatusUnbounded, Nodes: nodes}, nil
			}
			if err != nil {
				return &solver.Solution{Status: solver.StatusError, Nodes: nodes}, fmt.Errorf("node relaxation: %w", err)
			}
			if obj >= incumbentObj {
				continue
			}
			heap.Push(open, &node{lo: childLo, hi: childHi, bound: obj, values: x})
		}
	}

	if incumbent == nil {
		return &solver.Solution{Status: solver.StatusInfeasible, Nodes: nodes}, nil
	}
	if open.Len() == 0 {
		// The tree was exhausted: the incumbent is the exact optimum.
		bestBound = incumbentObj
	}
	s.log.Debugw("milp solved", map[string]any{
		"objective": incumbentObj + p.Offset,
		"nodes":     nodes,
	})
	return &solver.Solution{
		Status:    solver.StatusOptimal,
		Values:    incumbent,
		Objective: incumbentObj + p.Offset,
		Gap:       relGap(incumbentObj, bestBound),
		Nodes:     nodes,
	}, nil
}

func (s *BranchBound) interruptedSolution(ctx context.Context, p *solver.Problem, incumbent []float64, incumbentObj, bestBound float64, nodes int) (*solver.Solution, error) {
	if incumbent == nil {
		if err := ctx.Err(); err != nil {
			return &solver.Solution{Status: solver.StatusError, Nodes: nodes}, fmt.Errorf("%w: %w", ErrNoIncumbent, err)
		}
		return &solver.Solution{Status: solver.StatusError, Nodes: nodes}, ErrNoIncumbent
	}
	s.log.Warnf("milp interrupted after %d nodes, returning incumbent with gap %.4g", nodes, relGap(incumbentObj, bestBound))
	return &solver.Solution{
		Status:    solver.StatusFeasible,
		Values:    incumbent,
		Objective: incumbentObj + p.Offset,
		Gap:       relGap(incumbentObj, bestBound),
		Nodes:     nodes,
	}, nil
}

// roundBinaries fixes every binary to its nearest integer in the relaxation
// and re-solves the continuous part. Returns ok=false when the rounded model
// is infeasible.
func (s *BranchBound) roundBinaries(p *solver.Problem, lo, hi []float64, binIdx []int, relaxed []float64) ([]float64, float64, bool) {
	if len(binIdx) == 0 {
		return nil, 0, false
	}
	rlo := append([]float64(nil), lo...)
	rhi := append([]float64(nil), hi...)
	for _, i := range binIdx {
		v := math.Round(relaxed[i])
		rlo[i], rhi[i] = v, v
	}
	obj, x, err := solveRelaxation(p, rlo, rhi)
	if err != nil {
		return nil, 0, false
	}
	return x, obj, true
}

// mostFractional returns the index of the binary variable farthest from an
// integer value, or -1 when all binaries are integral.
func mostFractional(binIdx []int, x []float64) int {
	best, bestDist := -1, intTol
	for _, i := range binIdx {
		d := math.Abs(x[i] - math.Round(x[i]))
		if d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func relGap(incumbent, bound float64) float64 {
	g := (incumbent - bound) / math.Max(1, math.Abs(incumbent))
	if g < 0 {
		return 0
	}
	return g
}
