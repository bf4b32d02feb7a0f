// Package landmarks implements the landmark/ALT precomputer (component
// C6). It runs forward and reverse Dijkstra from each selected landmark
// over the union of walk and anchored macro edges, storing two dense
// nodes-by-landmarks f32 tables consumed at query time by the ALT+octile
// heuristic in package search.
package landmarks

import (
	"container/heap"
	"math"
	"sync"
)

// WeightedEdge is one directed (src, dst, weight) edge contributing to
// the adjacency Dijkstra runs over.
type WeightedEdge struct {
	Src, Dst uint32
	Weight   float32
}

// SelectFirstK is the trivial landmark selection policy spec.md §4.C6
// names as a concrete baseline: the first k node ids. Real deployments
// may substitute a farthest-point or max-coverage policy external to
// this package; Tables only needs the resulting id list.
func SelectFirstK(nodes int, k int) []uint32 {
	if k > nodes {
		k = nodes
	}
	ids := make([]uint32, k)
	for i := range ids {
		ids[i] = uint32(i)
	}
	return ids
}

// Tables holds the forward/backward landmark distance tables in
// landmark-major row order: Fw[li*nodes+n] is the distance from
// landmark li to node n; Bw[li*nodes+n] is the distance from node n to
// landmark li.
type Tables struct {
	Nodes     int
	Landmarks []uint32
	Fw        []float32
	Bw        []float32
}

// Compute builds the forward/reverse adjacency from walk and macro
// edges (globals are excluded, per spec.md §4.C6, to keep the tables
// valid lower bounds from any node) and runs one forward + one reverse
// Dijkstra per landmark. Landmark runs are independent and are
// distributed across goroutines.
func Compute(nodes int, walk, macro []WeightedEdge, landmarkIDs []uint32) *Tables {
	if len(landmarkIDs) == 0 || nodes == 0 {
		return &Tables{Nodes: nodes, Landmarks: landmarkIDs}
	}

	fwdAdj := make([][]WeightedEdge, nodes)
	revAdj := make([][]WeightedEdge, nodes)
	addAll := func(edges []WeightedEdge) {
		for _, e := range edges {
			if int(e.Src) >= nodes || int(e.Dst) >= nodes {
				continue
			}
			fwdAdj[e.Src] = append(fwdAdj[e.Src], WeightedEdge{Src: e.Src, Dst: e.Dst, Weight: e.Weight})
			revAdj[e.Dst] = append(revAdj[e.Dst], WeightedEdge{Src: e.Dst, Dst: e.Src, Weight: e.Weight})
		}
	}
	addAll(walk)
	addAll(macro)

	lmCount := len(landmarkIDs)
	fw := make([]float32, nodes*lmCount)
	bw := make([]float32, nodes*lmCount)

	var wg sync.WaitGroup
	for li, lmID := range landmarkIDs {
		li, lmID := li, lmID
		wg.Add(1)
		go func() {
			defer wg.Done()
			df := dijkstra(fwdAdj, int(lmID))
			db := dijkstra(revAdj, int(lmID))
			copy(fw[li*nodes:(li+1)*nodes], df)
			copy(bw[li*nodes:(li+1)*nodes], db)
		}()
	}
	wg.Wait()

	return &Tables{Nodes: nodes, Landmarks: landmarkIDs, Fw: fw, Bw: bw}
}

// dijkstra runs a standard min-heap Dijkstra from start over adj,
// returning per-node distances with +Inf for unreachable nodes.
func dijkstra(adj [][]WeightedEdge, start int) []float32 {
	n := len(adj)
	dist := make([]float32, n)
	for i := range dist {
		dist[i] = float32(math.Inf(1))
	}
	if start < 0 || start >= n {
		return dist
	}
	dist[start] = 0

	pq := &pqueue{{node: uint32(start), cost: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		u := int(item.node)
		if item.cost > dist[u] {
			continue
		}
		for _, e := range adj[u] {
			v := int(e.Dst)
			next := item.cost + e.Weight
			if next < dist[v] {
				dist[v] = next
				heap.Push(pq, pqItem{node: e.Dst, cost: next})
			}
		}
	}
	return dist
}

type pqItem struct {
	node uint32
	cost float32
}

type pqueue []pqItem

func (q pqueue) Len() int { return len(q) }
func (q pqueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].node < q[j].node
}
func (q pqueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *pqueue) Push(x interface{}) { *q = append(*q, x.(pqItem)) }
func (q *pqueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
