package ch

import "path_oracle/pkg/graph"

// repairItem is a pending DAG edge update: the edge (v,w) with v the deeper
// endpoint, keyed by v's label slot.
type repairItem struct {
	distIndex uint16
	v, w      graph.NodeID
	distance  graph.Distance
	pathCount uint16
}

// repairHeap is a concrete-typed binary max-heap on distIndex: deeper edges
// repair first, and the updates they induce on shallower edges follow.
type repairHeap struct {
	items []repairItem
}

func (h *repairHeap) Len() int { return len(h.items) }

func (h *repairHeap) Push(item repairItem) {
	h.items = append(h.items, item)
	h.siftUp(len(h.items) - 1)
}

func (h *repairHeap) Pop() repairItem {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top
}

// siftUp uses hole-sift: saves the floating item and does 1 assignment per
// level instead of 3 (swap).
func (h *repairHeap) siftUp(i int) {
	item := h.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if item.distIndex <= h.items[parent].distIndex {
			break
		}
		h.items[i] = h.items[parent]
		i = parent
	}
	h.items[i] = item
}

func (h *repairHeap) siftDown(i int) {
	n := len(h.items)
	item := h.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && h.items[right].distIndex > h.items[child].distIndex {
			child = right
		}
		if item.distIndex >= h.items[child].distIndex {
			break
		}
		h.items[i] = h.items[child]
		i = child
	}
	h.items[i] = item
}
