package density

// IdxToAI decodes a flat index over the (point × dimension) space into its
// (point, dimension) pair. The space is point-major, dimension-minor, so the
// point is the quotient and the dimension the remainder.
//
// Every matrix assembly and evaluation routine in this package goes through
// this mapping; it is the single source of truth for the flat layout.
func IdxToAI(idx, d int) (point, dim int) {
	return idx / d, idx % d
}

// AIToIdx is the exact inverse of IdxToAI.
func AIToIdx(point, dim, d int) int {
	return point*d + dim
}
