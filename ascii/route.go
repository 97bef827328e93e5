package ascii

import "container/heap"

// point is a character-grid coordinate.
type point struct {
	x, y int
}

// routeManhattan finds a shortest orthogonal path from start to goal
// over free cells using A* with a turn penalty, so routes prefer long
// straight runs. initialDir seeds the turn penalty with the attachment
// side's outward direction, which keeps the first run pointing away from
// the box and makes bundle splits line up on a shared segment. Moves are
// 4-connected only: a diagonal step cannot be produced. Returns nil when
// no path exists.
func routeManhattan(start, goal point, w, h, initialDir int, blocked func(x, y int) bool) []point {
	if start == goal {
		return []point{start}
	}

	dirs := []point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

	const turnPenalty = 4

	dist := map[routeState]int{}
	prev := map[routeState]routeState{}

	pq := &nodeQueue{}
	heap.Init(pq)
	init := routeState{p: start, dir: initialDir}
	dist[init] = 0
	heap.Push(pq, queueNode{st: init, f: manhattan(start, goal)})

	var goalState routeState
	found := false
	for pq.Len() > 0 && !found {
		cur := heap.Pop(pq).(queueNode)
		if cur.st.p == goal {
			goalState = cur.st
			found = true
			break
		}
		g := dist[cur.st]
		for d, off := range dirs {
			np := point{cur.st.p.x + off.x, cur.st.p.y + off.y}
			if np.x < 0 || np.x >= w || np.y < 0 || np.y >= h {
				continue
			}
			if np != goal && blocked(np.x, np.y) {
				continue
			}
			cost := g + 1
			if cur.st.dir >= 0 && cur.st.dir != d {
				cost += turnPenalty
			}
			ns := routeState{p: np, dir: d}
			if old, ok := dist[ns]; ok && old <= cost {
				continue
			}
			dist[ns] = cost
			prev[ns] = cur.st
			heap.Push(pq, queueNode{st: ns, f: cost + manhattan(np, goal), seq: pq.next()})
		}
	}
	if !found {
		return nil
	}

	var path []point
	for st := goalState; ; {
		path = append(path, st.p)
		p, ok := prev[st]
		if !ok {
			break
		}
		st = p
	}
	// Reverse into start-to-goal order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func manhattan(a, b point) int {
	dx := a.x - b.x
	if dx < 0 {
		dx = -dx
	}
	dy := a.y - b.y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// routeState is a cell plus the direction it was entered from; tracking
// the direction lets the turn penalty apply per expansion.
type routeState struct {
	p   point
	dir int // 0 right, 1 left, 2 down, 3 up, -1 initial
}

type queueNode struct {
	st  routeState
	f   int
	seq int
}

type nodeQueue struct {
	items []queueNode
	seq   int
}

func (q *nodeQueue) next() int {
	q.seq++
	return q.seq
}

func (q *nodeQueue) Len() int { return len(q.items) }

// Less orders by f, then by insertion sequence so exploration order (and
// with it the chosen path among equals) is deterministic.
func (q *nodeQueue) Less(i, j int) bool {
	if q.items[i].f != q.items[j].f {
		return q.items[i].f < q.items[j].f
	}
	return q.items[i].seq < q.items[j].seq
}

func (q *nodeQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }
func (q *nodeQueue) Push(x any)    { q.items = append(q.items, x.(queueNode)) }
func (q *nodeQueue) Pop() any {
	old := q.items
	n := len(old)
	it := old[n-1]
	q.items = old[:n-1]
	return it
}
