package world

import (
	"container/heap"

	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-heightfield/pkg/heightfield"
	"github.com/Faultbox/midgard-heightfield/pkg/math"
)

// Cell addresses a grid node: I runs along world X, J along world Z.
type Cell struct {
	I, J int
}

type pathNode struct {
	cell   Cell
	g      float32 // cost from start
	f      float32 // g + heuristic
	parent *pathNode
	index  int // heap position
}

type pathHeap []*pathNode

func (h pathHeap) Len() int           { return len(h) }
func (h pathHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h pathHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *pathHeap) Push(x any) {
	node := x.(*pathNode)
	node.index = len(*h)
	*h = append(*h, node)
}

func (h *pathHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[:n-1]
	return node
}

// directions lists the 8 neighbours; odd indices are diagonals.
var directions = [8]Cell{
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
}

// PathFinder routes over terrain nodes, refusing steps steeper than MaxSlope.
type PathFinder struct {
	grid     *heightfield.Grid
	n        int
	spacing  float32 // world distance between adjacent nodes
	half     float32
	scale    float32
	maxSlope float32 // rise over run
}

// NewPathFinder creates a pathfinder over the query's grid.
// maxSlope is the steepest rise/run a step may have; values <= 0 allow any slope.
func NewPathFinder(query *heightfield.Query, maxSlope float32) *PathFinder {
	grid := query.Grid()
	n := grid.Resolution()
	spacing := float32(query.WorldWidth())
	if n > 1 {
		spacing /= float32(n - 1)
	}
	if maxSlope <= 0 {
		maxSlope = math32.Inf(1)
	}
	return &PathFinder{
		grid:     grid,
		n:        n,
		spacing:  spacing,
		half:     float32(query.WorldWidth() / 2),
		scale:    float32(query.HeightScale()),
		maxSlope: maxSlope,
	}
}

// CellAt returns the node nearest to world position p, clamped to the grid.
func (pf *PathFinder) CellAt(p math.Vec2) Cell {
	if pf.n == 1 {
		return Cell{}
	}
	toIndex := func(v float32) int {
		k := int(math32.Round((v + pf.half) / pf.spacing))
		return min(max(k, 0), pf.n-1)
	}
	return Cell{I: toIndex(p.X), J: toIndex(p.Z)}
}

// Position returns the world position of a node, on the terrain surface.
func (pf *PathFinder) Position(c Cell) math.Vec3 {
	return math.Vec3{
		X: -pf.half + float32(c.I)*pf.spacing,
		Y: pf.height(c),
		Z: -pf.half + float32(c.J)*pf.spacing,
	}
}

// CanStep reports whether a single straight step between adjacent nodes is allowed.
func (pf *PathFinder) CanStep(from, to Cell) bool {
	if !pf.inBounds(from) || !pf.inBounds(to) {
		return false
	}
	run := pf.spacing * math32.Hypot(float32(to.I-from.I), float32(to.J-from.J))
	if run == 0 {
		return true
	}
	rise := math32.Abs(pf.height(to) - pf.height(from))
	return rise/run <= pf.maxSlope
}

// FindPath finds the cheapest route between two world positions, snapped to nodes.
// Returns nil if no route exists.
func (pf *PathFinder) FindPath(start, goal math.Vec2) []math.Vec3 {
	cells := pf.FindCells(pf.CellAt(start), pf.CellAt(goal))
	if cells == nil {
		return nil
	}
	path := make([]math.Vec3, len(cells))
	for i, c := range cells {
		path[i] = pf.Position(c)
	}
	return path
}

// FindCells runs A* between two nodes. Step cost is the 3D distance travelled.
// Returns nil if no route exists.
func (pf *PathFinder) FindCells(start, goal Cell) []Cell {
	if !pf.inBounds(start) || !pf.inBounds(goal) {
		return nil
	}

	open := &pathHeap{}
	nodes := make(map[Cell]*pathNode)
	closed := make(map[Cell]bool)

	first := &pathNode{cell: start, f: pf.heuristic(start, goal)}
	heap.Push(open, first)
	nodes[start] = first

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if current.cell == goal {
			return reconstruct(current)
		}
		closed[current.cell] = true

		for i, d := range directions {
			next := Cell{current.cell.I + d.I, current.cell.J + d.J}
			if closed[next] || !pf.CanStep(current.cell, next) {
				continue
			}
			// Diagonals must not cut between two blocked straight steps
			if i%2 == 1 &&
				(!pf.CanStep(current.cell, Cell{next.I, current.cell.J}) ||
					!pf.CanStep(current.cell, Cell{current.cell.I, next.J})) {
				continue
			}

			g := current.g + pf.Position(current.cell).Distance(pf.Position(next))

			node, seen := nodes[next]
			if !seen {
				node = &pathNode{cell: next, g: g, f: g + pf.heuristic(next, goal), parent: current}
				nodes[next] = node
				heap.Push(open, node)
			} else if g < node.g {
				node.f += g - node.g
				node.g = g
				node.parent = current
				heap.Fix(open, node.index)
			}
		}
	}

	return nil
}

// heuristic is the straight-line 3D distance, which never overestimates the step cost.
func (pf *PathFinder) heuristic(a, b Cell) float32 {
	return pf.Position(a).Distance(pf.Position(b))
}

func (pf *PathFinder) height(c Cell) float32 {
	return float32(pf.grid.At(c.I, c.J)) * pf.scale
}

func (pf *PathFinder) inBounds(c Cell) bool {
	return c.I >= 0 && c.I < pf.n && c.J >= 0 && c.J < pf.n
}

func reconstruct(node *pathNode) []Cell {
	var path []Cell
	for ; node != nil; node = node.parent {
		path = append(path, node.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
