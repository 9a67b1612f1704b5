package density

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Mask is a boolean selection matrix sharing the (dimension × point) shape
// convention of the data it selects from. A true entry marks the
// (point, dimension) pair as a basis component.
type Mask struct {
	d, m int
	vals []bool // column-major, flat index = point*d + dim
}

// NewMask creates an all-false mask for m points of dimensionality d.
func NewMask(d, m int) *Mask {
	return &Mask{d: d, m: m, vals: make([]bool, d*m)}
}

// Dims returns the dimensionality and point count of the mask.
func (mk *Mask) Dims() (d, m int) {
	return mk.d, mk.m
}

// Set marks the (dim, point) entry.
func (mk *Mask) Set(dim, point int, v bool) {
	mk.vals[AIToIdx(point, dim, mk.d)] = v
}

// At reports whether the (dim, point) entry is selected.
func (mk *Mask) At(dim, point int) bool {
	return mk.vals[AIToIdx(point, dim, mk.d)]
}

// BasisInds returns the selected flat indices in strictly increasing order.
// The scan already visits the flat space in order; the sort keeps the
// contract explicit should the layout ever change.
func (mk *Mask) BasisInds() []int {
	var inds []int
	for i, v := range mk.vals {
		if v {
			inds = append(inds, i)
		}
	}
	sort.Ints(inds)
	return inds
}

// subsampleCols returns a copy of the mask restricted to the given point
// columns, in the given order.
func (mk *Mask) subsampleCols(points []int) *Mask {
	out := NewMask(mk.d, len(points))
	for newP, oldP := range points {
		for i := 0; i < mk.d; i++ {
			out.vals[AIToIdx(newP, i, mk.d)] = mk.vals[AIToIdx(oldP, i, mk.d)]
		}
	}
	return out
}

// basisPointInds maps flat basis indices to the distinct whole points they
// touch, sorted ascending. A map does the deduplication.
func basisPointInds(inds []int, d int) []int {
	set := make(map[int]struct{})
	for _, idx := range inds {
		point, _ := IdxToAI(idx, d)
		set[point] = struct{}{}
	}
	points := make([]int, 0, len(set))
	for p := range set {
		points = append(points, p)
	}
	sort.Ints(points)
	return points
}

// subsampleMatrixCols returns a (d × len(points)) copy of the selected
// columns of x, in the given order.
func subsampleMatrixCols(points []int, x *mat.Dense) *mat.Dense {
	d, _ := x.Dims()
	out := mat.NewDense(d, len(points), nil)
	for newP, oldP := range points {
		for i := 0; i < d; i++ {
			out.Set(i, newP, x.At(i, oldP))
		}
	}
	return out
}
