package model

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Node is one split or leaf of a regression tree. Rows with
// x[Feature] <= Threshold go Left.
type Node struct {
	Leaf      bool
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
}

// Tree is a CART regression tree grown on squared error. MaxDepth 0 grows
// until leaves are pure or cannot be split.
type Tree struct {
	MaxDepth int
	Inputs   int
	Nodes    []Node
}

// Fit grows the tree on every row of x.
func (t *Tree) Fit(x mat.Matrix, y []float64) error {
	if _, _, err := checkTraining(x, y); err != nil {
		return err
	}
	cols := columns(x)
	t.grow(cols, presort(cols), y, nil)
	return nil
}

// grow builds the tree from column-major data. sorted holds, per column, the
// row indices in ascending value order and is not modified. A nil w weights
// every row 1; rows with zero weight are left out.
func (t *Tree) grow(cols [][]float64, sorted [][]int, y, w []float64) {
	t.Inputs = len(cols)
	t.Nodes = t.Nodes[:0]

	b := treeBuilder{
		cols:     cols,
		y:        y,
		w:        w,
		maxDepth: t.MaxDepth,
		tree:     t,
		order:    make([][]int, len(cols)),
		left:     make([]bool, len(y)),
	}
	for f, s := range sorted {
		o := make([]int, 0, len(s))
		for _, i := range s {
			if b.weight(i) > 0 {
				o = append(o, i)
			}
		}
		b.order[f] = o
	}
	b.buf = make([]int, 0, len(b.order[0]))
	b.split(0, len(b.order[0]), 0)
}

// Predict walks every row of x to its leaf.
func (t *Tree) Predict(x mat.Matrix) ([]float64, error) {
	if len(t.Nodes) == 0 {
		return nil, ErrNotFitted
	}
	n, err := checkColumns(x, t.Inputs)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	row := make([]float64, t.Inputs)
	for i := range out {
		mat.Row(row, i, x)
		out[i] = t.predictRow(row)
	}
	return out, nil
}

func (t *Tree) predictRow(row []float64) float64 {
	n := t.Nodes[0]
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = t.Nodes[n.Left]
		} else {
			n = t.Nodes[n.Right]
		}
	}
	return n.Value
}

// columns copies x into column slices.
func columns(x mat.Matrix) [][]float64 {
	_, d := x.Dims()
	out := make([][]float64, d)
	for j := range out {
		out[j] = mat.Col(nil, j, x)
	}
	return out
}

// presort returns, for every column, the row indices ordered by value.
func presort(cols [][]float64) [][]int {
	order := make([][]int, len(cols))
	for f, col := range cols {
		idx := make([]int, len(col))
		for i := range idx {
			idx[i] = i
		}
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Compare(col[a], col[b])
		})
		order[f] = idx
	}
	return order
}

// treeBuilder grows nodes depth first. Every node owns the same [lo, hi)
// window of each order[f], which stays sorted by column f; splitting a node
// stably partitions each window so the children own its two halves.
type treeBuilder struct {
	cols     [][]float64
	y        []float64
	w        []float64
	maxDepth int
	tree     *Tree

	order [][]int
	left  []bool
	buf   []int
}

func (b *treeBuilder) weight(i int) float64 {
	if b.w == nil {
		return 1
	}
	return b.w[i]
}

func (b *treeBuilder) split(lo, hi, depth int) int {
	rows := b.order[0][lo:hi]
	var sw, swy float64
	for _, i := range rows {
		wi := b.weight(i)
		sw += wi
		swy += wi * b.y[i]
	}
	id := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, Node{Leaf: true, Value: swy / sw})

	if len(rows) < 2 || (b.maxDepth > 0 && depth >= b.maxDepth) || b.pure(rows) {
		return id
	}
	feature, threshold, ok := b.best(lo, hi, sw, swy)
	if !ok {
		return id
	}

	col := b.cols[feature]
	nLeft := 0
	for _, i := range rows {
		l := col[i] <= threshold
		b.left[i] = l
		if l {
			nLeft++
		}
	}
	for f := range b.order {
		b.partition(b.order[f][lo:hi])
	}

	l := b.split(lo, lo+nLeft, depth+1)
	r := b.split(lo+nLeft, hi, depth+1)

	n := &b.tree.Nodes[id]
	n.Leaf = false
	n.Feature = feature
	n.Threshold = threshold
	n.Left = l
	n.Right = r
	return id
}

// partition moves the rows marked left to the front of seg, keeping the
// relative order on both sides.
func (b *treeBuilder) partition(seg []int) {
	right := b.buf[:0]
	k := 0
	for _, i := range seg {
		if b.left[i] {
			seg[k] = i
			k++
		} else {
			right = append(right, i)
		}
	}
	copy(seg[k:], right)
}

func (b *treeBuilder) pure(rows []int) bool {
	first := b.y[rows[0]]
	for _, i := range rows[1:] {
		if b.y[i] != first {
			return false
		}
	}
	return true
}

// best returns the split maximizing sumL²/wL + sumR²/wR, which minimizes the
// children's total squared error. Ties keep the lowest feature index and
// then the lowest threshold.
func (b *treeBuilder) best(lo, hi int, sw, swy float64) (feature int, threshold float64, ok bool) {
	bestScore := swy * swy / sw

	for f, order := range b.order {
		seg := order[lo:hi]
		col := b.cols[f]

		var lw, ly float64
		for k := 1; k < len(seg); k++ {
			prev := seg[k-1]
			wi := b.weight(prev)
			lw += wi
			ly += wi * b.y[prev]

			a, c := col[prev], col[seg[k]]
			if a == c {
				continue
			}
			rw, ry := sw-lw, swy-ly
			score := ly*ly/lw + ry*ry/rw
			if score > bestScore {
				bestScore = score
				feature = f
				threshold = a + (c-a)/2
				if threshold >= c {
					threshold = a
				}
				ok = true
			}
		}
	}
	return feature, threshold, ok
}
