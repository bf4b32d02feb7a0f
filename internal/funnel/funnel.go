// Package funnel implements the Mikko Mononen string-pull algorithm
// for smoothing a portal-polygon corridor into the shortest path
// through it. It is a supplementary feature: spec.md's core route is
// tile-grid based and needs no smoothing, but the funnel algorithm
// applies wherever a macro edge exposes a navmesh-style portal
// sequence (e.g. a wide doorway or a multi-tile object interaction
// rect) instead of a single point-to-point teleport.
package funnel

// Point is a 2D point in plane-local tile-space.
type Point struct {
	X, Y float32
}

// Portal is one gate of the corridor the string-pull algorithm threads
// through, given by its left and right edge points in path order.
type Portal struct {
	Left, Right Point
}

// Stringpull computes the shortest path from start to goal through a
// sequence of portals, per Mononen's simple stupid funnel algorithm.
// portals must not include start/goal as degenerate zero-width
// portals; the function prepends/appends them internally.
func Stringpull(start, goal Point, portals []Portal) []Point {
	if len(portals) == 0 {
		return []Point{start, goal}
	}

	path := []Point{start}
	apex, left, right := start, portals[0].Left, portals[0].Right
	apexIdx, leftIdx, rightIdx := 0, 0, 0

	all := make([]Portal, 0, len(portals)+1)
	all = append(all, portals...)
	all = append(all, Portal{Left: goal, Right: goal})

	for i := 1; i < len(all); i++ {
		p := all[i]

		if triarea2(apex, right, p.Right) <= 0 {
			if apex == right || triarea2(apex, left, p.Right) > 0 {
				right = p.Right
				rightIdx = i
			} else {
				path = append(path, left)
				apex = left
				apexIdx = leftIdx
				left, right = apex, apex
				leftIdx, rightIdx = apexIdx, apexIdx
				i = apexIdx
				continue
			}
		}

		if triarea2(apex, left, p.Left) >= 0 {
			if apex == left || triarea2(apex, right, p.Left) < 0 {
				left = p.Left
				leftIdx = i
			} else {
				path = append(path, right)
				apex = right
				apexIdx = rightIdx
				left, right = apex, apex
				leftIdx, rightIdx = apexIdx, apexIdx
				i = apexIdx
				continue
			}
		}
	}

	path = append(path, goal)
	return path
}

// triarea2 is twice the signed area of triangle (a,b,c): positive when
// c is left of the directed line a->b.
func triarea2(a, b, c Point) float32 {
	ax, ay := b.X-a.X, b.Y-a.Y
	bx, by := c.X-a.X, c.Y-a.Y
	return ax*by - bx*ay
}
