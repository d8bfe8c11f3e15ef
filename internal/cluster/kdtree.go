// NodeGlobe - Provider Node Clustering and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nodeglobe

package cluster

// kdTree is a static 2D KD-tree over a fixed set of points. Points live in
// flat slices sorted in place so that every subrange [left, right] is a
// subtree with its median at (left+right)/2. Leaves hold up to nodeSize
// points and are scanned linearly.
type kdTree struct {
	ids      []int32   // item index per slot
	coords   []float64 // x, y per slot
	nodeSize int
}

func newKDTree(xs, ys []float64, nodeSize int) *kdTree {
	n := len(xs)
	t := &kdTree{
		ids:      make([]int32, n),
		coords:   make([]float64, 2*n),
		nodeSize: nodeSize,
	}
	for i := 0; i < n; i++ {
		t.ids[i] = int32(i)
		t.coords[2*i] = xs[i]
		t.coords[2*i+1] = ys[i]
	}
	t.sortRange(0, n-1, 0)
	return t
}

func (t *kdTree) sortRange(left, right, axis int) {
	if right-left <= t.nodeSize {
		return
	}
	m := (left + right) >> 1
	t.selectKth(m, left, right, axis)
	t.sortRange(left, m-1, 1-axis)
	t.sortRange(m+1, right, 1-axis)
}

// selectKth partially sorts [left, right] on axis so that slot k holds the
// k-th smallest coordinate, smaller ones before it and larger ones after.
func (t *kdTree) selectKth(k, left, right, axis int) {
	for right > left {
		pivot := t.coords[2*k+axis]
		i, j := left, right

		t.swap(left, k)
		if t.coords[2*right+axis] > pivot {
			t.swap(left, right)
		}

		for i < j {
			t.swap(i, j)
			i++
			j--
			for t.coords[2*i+axis] < pivot {
				i++
			}
			for t.coords[2*j+axis] > pivot {
				j--
			}
		}

		if t.coords[2*left+axis] == pivot {
			t.swap(left, j)
		} else {
			j++
			t.swap(j, right)
		}

		if j <= k {
			left = j + 1
		}
		if k <= j {
			right = j - 1
		}
	}
}

func (t *kdTree) swap(i, j int) {
	t.ids[i], t.ids[j] = t.ids[j], t.ids[i]
	t.coords[2*i], t.coords[2*j] = t.coords[2*j], t.coords[2*i]
	t.coords[2*i+1], t.coords[2*j+1] = t.coords[2*j+1], t.coords[2*i+1]
}

// rangeSearch appends to dst the ids of all points inside the closed box.
func (t *kdTree) rangeSearch(dst []int32, minX, minY, maxX, maxY float64) []int32 {
	if len(t.ids) == 0 {
		return dst
	}
	stack := []int{0, len(t.ids) - 1, 0}
	for len(stack) > 0 {
		axis := stack[len(stack)-1]
		right := stack[len(stack)-2]
		left := stack[len(stack)-3]
		stack = stack[:len(stack)-3]

		if right-left <= t.nodeSize {
			for i := left; i <= right; i++ {
				x, y := t.coords[2*i], t.coords[2*i+1]
				if x >= minX && x <= maxX && y >= minY && y <= maxY {
					dst = append(dst, t.ids[i])
				}
			}
			continue
		}

		m := (left + right) >> 1
		x, y := t.coords[2*m], t.coords[2*m+1]
		if x >= minX && x <= maxX && y >= minY && y <= maxY {
			dst = append(dst, t.ids[m])
		}

		if (axis == 0 && minX <= x) || (axis == 1 && minY <= y) {
			stack = append(stack, left, m-1, 1-axis)
		}
		if (axis == 0 && maxX >= x) || (axis == 1 && maxY >= y) {
			stack = append(stack, m+1, right, 1-axis)
		}
	}
	return dst
}

// within appends to dst the ids of all points at most r away from (qx, qy).
func (t *kdTree) within(dst []int32, qx, qy, r float64) []int32 {
	if len(t.ids) == 0 {
		return dst
	}
	r2 := r * r
	stack := []int{0, len(t.ids) - 1, 0}
	for len(stack) > 0 {
		axis := stack[len(stack)-1]
		right := stack[len(stack)-2]
		left := stack[len(stack)-3]
		stack = stack[:len(stack)-3]

		if right-left <= t.nodeSize {
			for i := left; i <= right; i++ {
				if sqDist(t.coords[2*i], t.coords[2*i+1], qx, qy) <= r2 {
					dst = append(dst, t.ids[i])
				}
			}
			continue
		}

		m := (left + right) >> 1
		x, y := t.coords[2*m], t.coords[2*m+1]
		if sqDist(x, y, qx, qy) <= r2 {
			dst = append(dst, t.ids[m])
		}

		if (axis == 0 && qx-r <= x) || (axis == 1 && qy-r <= y) {
			stack = append(stack, left, m-1, 1-axis)
		}
		if (axis == 0 && qx+r >= x) || (axis == 1 && qy+r >= y) {
			stack = append(stack, m+1, right, 1-axis)
		}
	}
	return dst
}

func sqDist(ax, ay, bx, by float64) float64 {
	dx, dy := ax-bx, ay-by
	return dx*dx + dy*dy
}
