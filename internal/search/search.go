// Package search implements the online A* query engine (component
// C10): an ALT+octile admissible heuristic over the CSR adjacency
// built by package neighbors, with deterministic tie-breaking and
// cooperative cancellation so a single misbehaving route request can't
// wedge a worker goroutine indefinitely.
package search

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/dshills/navpath/internal/eligibility"
	"github.com/dshills/navpath/internal/logx"
	"github.com/dshills/navpath/internal/neighbors"
	"github.com/dshills/navpath/internal/npserr"
	"github.com/dshills/navpath/internal/reqenc"
)

// OpenSetKind selects the open-set implementation a query uses.
type OpenSetKind uint8

const (
	// OpenSetBinaryHeap is the default: a classic container/heap
	// priority queue, correct for any float cost distribution.
	OpenSetBinaryHeap OpenSetKind = iota
	// OpenSetBucket trades a small amount of precision-insensitivity
	// for O(1) amortized pop on the walk-edge-dominated cost ranges
	// typical of tile movement, per spec.md's supplementary engine
	// variant.
	OpenSetBucket
)

// cancelCheckInterval is how many pops the engine performs between
// ctx.Err() checks. Checking every pop would add measurable overhead
// to tight inner loops; checking too rarely makes cancellation
// sluggish on pathological graphs.
const cancelCheckInterval = 4096

// Options configures a single Engine.
type Options struct {
	OpenSet OpenSetKind
	// MaxGlobalFanout caps how many global teleport edges are
	// offered from a single expanded node. Zero means unlimited.
	// Without a cap, a world with many unlocked lodestones turns
	// every expansion into an O(globals) fan-out, dwarfing the local
	// walk/macro neighborhood.
	MaxGlobalFanout int
	Scale           float32
}

// Engine answers shortest-path queries over one compiled graph and one
// resolved eligibility mask. Its scratch state is allocated once and
// reused across Search calls, with the generation counters in scratch
// giving each query an O(1) logical reset instead of re-zeroing the
// visited/closed arrays; a mutex serializes concurrent callers over
// that shared state rather than each paying a fresh O(N) allocation.
type Engine struct {
	csr       *neighbors.CSR
	globals   *neighbors.Globals
	reqIndex  neighbors.ReqIndex
	mask      eligibility.Mask
	heuristic *Heuristic
	opts      Options

	mu sync.Mutex
	sc *scratch
}

// NewEngine builds a query engine. tags and mask must correspond: mask
// was built by eligibility.Build(tags, profile). The requirement-id ->
// tag-index map AllNeighbors needs on every expansion is built once
// here rather than per call.
func NewEngine(csr *neighbors.CSR, globals *neighbors.Globals, tags []reqenc.Tag, mask eligibility.Mask, h *Heuristic, opts Options) *Engine {
	if opts.Scale == 0 {
		opts.Scale = 600
	}
	return &Engine{
		csr: csr, globals: globals, reqIndex: neighbors.BuildReqIndex(tags),
		mask: mask, heuristic: h, opts: opts,
	}
}

// Step is one edge of a reconstructed route.
type Step struct {
	From, To   uint32
	Weight     float32
	Kind       neighbors.Kind
	MacroIndex int
	Global     bool
}

// Result is a completed route.
type Result struct {
	Nodes    []uint32
	Steps    []Step
	Cost     float32
	Expanded int
}

// scratch holds the generation-versioned per-search state. Reusing an
// Engine across many searches without reallocating g/parent/gen every
// call is why visitedGen exists: bumping gen makes every prior entry
// implicitly stale in O(1) instead of re-zeroing the arrays.
type scratch struct {
	gen        uint32
	visitedGen []uint32
	closedGen  []uint32
	g          []float32
	parentNode []uint32
	parentIdx  []int32 // index into the entry list of the edge used to reach this node, -1 for start
	parentKind []neighbors.Kind
	parentGlobal []bool
}

func newScratch(n int) *scratch {
	return &scratch{
		visitedGen: make([]uint32, n),
		closedGen:  make([]uint32, n),
		g:          make([]float32, n),
		parentNode: make([]uint32, n),
		parentIdx:  make([]int32, n),
		parentKind: make([]neighbors.Kind, n),
		parentGlobal: make([]bool, n),
	}
}

// scratchFor returns e's reusable scratch state, allocating it once on
// first use and bumping its generation on every subsequent call. A
// generation bump makes every entry from prior searches implicitly
// stale in O(1), so repeated queries against a long-lived Engine never
// re-zero the visited/closed/parent arrays.
func (e *Engine) scratchFor(n int) *scratch {
	if e.sc == nil {
		e.sc = newScratch(n)
	}
	e.sc.gen++
	return e.sc
}

// Search runs A* from start to goal. It returns npserr.ErrCancelled if
// ctx is done before a path is found, and a nil Result with no error
// if start and goal are disconnected under the current eligibility
// mask.
func (e *Engine) Search(ctx context.Context, start, goal uint32) (*Result, error) {
	n := e.csr.Nodes
	if int(start) >= n || int(goal) >= n {
		return nil, fmt.Errorf("search: node out of range: %w", npserr.ErrOutOfBounds)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	sc := e.scratchFor(n)

	var open openSet
	switch e.opts.OpenSet {
	case OpenSetBucket:
		open = newBucketQueue(e.opts.Scale / 4)
	default:
		open = newBinaryHeapSet()
	}

	sc.visitedGen[start] = sc.gen
	sc.g[start] = 0
	sc.parentIdx[start] = -1
	open.push(start, e.heuristic.H(start, goal), 0)

	if start == goal {
		return &Result{Nodes: []uint32{start}, Cost: 0}, nil
	}

	pops := 0
	fanoutCapped := false
	defer func() {
		if fanoutCapped {
			logx.WithComponent("search").Warn("global teleport fanout capped; consider a two-phase search strategy for this world",
				"max_global_fanout", e.opts.MaxGlobalFanout)
		}
	}()
	for open.len() > 0 {
		pops++
		if pops%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("search: %w", npserr.ErrCancelled)
			}
		}

		u, _, g, ok := open.pop()
		if !ok {
			break
		}
		if sc.closedGen[u] == sc.gen {
			continue
		}
		if g > sc.g[u] {
			continue
		}
		sc.closedGen[u] = sc.gen

		if u == goal {
			return e.reconstruct(sc, start, goal, pops), nil
		}

		entries := neighbors.AllNeighbors(e.csr, e.globals, u, e.reqIndex, e.mask)
		fanout := 0
		for _, ent := range entries {
			if ent.Global {
				if e.opts.MaxGlobalFanout > 0 && fanout >= e.opts.MaxGlobalFanout {
					fanoutCapped = true
					continue
				}
				fanout++
			}
			v := ent.Dst
			if int(v) >= n {
				continue
			}
			if sc.closedGen[v] == sc.gen {
				continue
			}
			tentative := g + ent.Weight
			if sc.visitedGen[v] != sc.gen || tentative < sc.g[v] {
				sc.visitedGen[v] = sc.gen
				sc.g[v] = tentative
				sc.parentNode[v] = u
				sc.parentIdx[v] = int32(ent.MacroIndex)
				sc.parentKind[v] = ent.Kind
				sc.parentGlobal[v] = ent.Global
				f := tentative + e.heuristic.H(v, goal)
				if !isFinite(f) {
					continue
				}
				open.push(v, f, tentative)
			}
		}
	}

	return nil, nil
}

func isFinite(f float32) bool {
	return !math.IsInf(float64(f), 0) && f == f
}

func (e *Engine) reconstruct(sc *scratch, start, goal uint32, expanded int) *Result {
	var nodes []uint32
	var steps []Step
	cur := goal
	for {
		nodes = append(nodes, cur)
		if cur == start {
			break
		}
		idx := sc.parentIdx[cur]
		parent := sc.parentNode[cur]
		steps = append(steps, Step{
			From: parent, To: cur,
			Weight:     sc.g[cur] - sc.g[parent],
			Kind:       sc.parentKind[cur],
			MacroIndex: int(idx),
			Global:     sc.parentGlobal[cur],
		})
		cur = parent
	}
	reverseU32(nodes)
	reverseStep(steps)
	return &Result{Nodes: nodes, Steps: steps, Cost: sc.g[goal], Expanded: expanded}
}

func reverseU32(s []uint32) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseStep(s []Step) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
