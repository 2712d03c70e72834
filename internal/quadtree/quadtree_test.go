package quadtree

import "testing"

func TestCoords(t *testing.T) {
	t.Parallel()

	q := Quadrant{X: 1, Y: 2, Z: 3, Level: 4}
	if got, want := q.Coords(Dim2D), []int32{1, 2, 4}; !equalSlice(got, want) {
		t.Fatalf("2D Coords = %v, want %v", got, want)
	}
	if got, want := q.Coords(Dim3D), []int32{1, 2, 3, 4}; !equalSlice(got, want) {
		t.Fatalf("3D Coords = %v, want %v", got, want)
	}
}

func equalSlice(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFirstLastDescendant(t *testing.T) {
	t.Parallel()

	q := Quadrant{X: 4, Y: 4, Level: 2}
	const maxLevel = 5
	first := FirstDescendant(q, maxLevel)
	if first.Level != maxLevel || first.X != q.X || first.Y != q.Y {
		t.Fatalf("FirstDescendant = %+v", first)
	}
	last := LastDescendant(Dim2D, q, maxLevel)
	wantExtent := int32(1)<<(maxLevel-q.Level) - 1
	if last.Level != maxLevel || last.X != q.X+wantExtent || last.Y != q.Y+wantExtent {
		t.Fatalf("LastDescendant = %+v, want extent %d", last, wantExtent)
	}
}

func TestConnectivityNeighbors(t *testing.T) {
	t.Parallel()

	c := NewConnectivity(3)
	c.Connect(0, 1)
	c.Connect(1, 2)

	n0 := c.Neighbors(0)
	if len(n0) != 1 || n0[0] != 1 {
		t.Fatalf("Neighbors(0) = %v, want [1]", n0)
	}
	n1 := c.Neighbors(1)
	if len(n1) != 2 {
		t.Fatalf("Neighbors(1) = %v, want 2 entries", n1)
	}
}

func TestForestEqual(t *testing.T) {
	t.Parallel()

	mk := func() *Forest {
		return &Forest{
			Dim:                 Dim2D,
			DataSize:            0,
			GlobalNumQuadrants:  2,
			GlobalFirstQuadrant: []int64{0, 2},
			Pertree:             []int64{0, 2},
			Trees: []*Tree{
				{Quadrants: []Quadrant{{X: 0, Y: 0, Level: 1}, {X: 1, Y: 0, Level: 1}}},
			},
		}
	}
	a, b := mk(), mk()
	if !a.Equal(b) {
		t.Fatal("expected equal forests to compare equal")
	}
	b.Trees[0].Quadrants[1].Level = 2
	if a.Equal(b) {
		t.Fatal("expected modified forest to compare unequal")
	}
}
