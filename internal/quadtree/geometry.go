package quadtree

// Geometric helpers delegated to the forest module by inflate (spec §6):
// first_descendant/last_descendant. Coordinates are expressed in units of
// the finest representable level, the same convention p4est uses, so a
// quadrant at level L covers a (2^(maxLevel-L))-wide box of those units
// starting at (X, Y[, Z]).

// FirstDescendant returns the finest-level descendant whose cell begins at
// the same corner as q: coordinates unchanged, level bumped to maxLevel.
func FirstDescendant(q Quadrant, maxLevel int32) Quadrant {
	d := q
	d.Level = maxLevel
	return d
}

// LastDescendant returns the finest-level descendant occupying the far
// corner of q's cell.
func LastDescendant(dim int, q Quadrant, maxLevel int32) Quadrant {
	extent := int32(1)<<uint(maxLevel-q.Level) - 1
	d := Quadrant{X: q.X + extent, Y: q.Y + extent, Level: maxLevel}
	if dim == Dim3D {
		d.Z = q.Z + extent
	}
	return d
}
