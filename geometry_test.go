package libredadb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointRotateQuarters(t *testing.T) {
	t.Parallel()
	p := Pt(1, 0)
	assert.Equal(t, Pt(0, 1), p.RotateQuarters(1))
	assert.Equal(t, Pt(-1, 0), p.RotateQuarters(2))
	assert.Equal(t, Pt(0, -1), p.RotateQuarters(3))
	assert.Equal(t, p, p.RotateQuarters(4))
	// Negative turns rotate clockwise.
	assert.Equal(t, Pt(0, -1), p.RotateQuarters(-1))
}

func TestPointManhattanDistance(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(7), Pt(0, 0).ManhattanDistance(Pt(3, 4)))
	assert.Equal(t, int64(7), Pt(3, 4).ManhattanDistance(Pt(0, 0)))
}

func TestPointDistance(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 5.0, Pt(0, 0).Distance(Pt(3, 4)), 1e-9)
	assert.InDelta(t, 5.0, Pt(3, 4).Distance(Pt(0, 0)), 1e-9)
	assert.Zero(t, Pt(-2, 7).Distance(Pt(-2, 7)))
}

func TestRectOfNormalizes(t *testing.T) {
	t.Parallel()
	r := RectOf(10, 20, 0, 5)
	assert.Equal(t, Pt(0, 5), r.Min)
	assert.Equal(t, Pt(10, 20), r.Max)
	assert.Equal(t, int64(10), r.Width())
	assert.Equal(t, int64(15), r.Height())
	assert.Equal(t, int64(150), r.Area())
}

func TestRectUnionIntersection(t *testing.T) {
	t.Parallel()
	a := RectOf(0, 0, 10, 10)
	b := RectOf(5, 5, 15, 15)

	assert.Equal(t, RectOf(0, 0, 15, 15), a.Union(b))

	overlap, ok := a.Intersection(b)
	require.True(t, ok)
	assert.Equal(t, RectOf(5, 5, 10, 10), overlap)

	_, ok = a.Intersection(RectOf(20, 20, 30, 30))
	assert.False(t, ok)

	assert.True(t, a.Intersects(b))
	assert.True(t, a.Intersects(RectOf(10, 0, 20, 10)), "touching edges intersect")
	assert.False(t, a.Intersects(RectOf(11, 0, 20, 10)))

	assert.True(t, a.ContainsPoint(Pt(10, 10)))
	assert.True(t, a.ContainsRect(RectOf(2, 2, 8, 8)))
	assert.False(t, a.ContainsRect(b))
}

func TestTransformApply(t *testing.T) {
	t.Parallel()
	tf := Transform{
		Mirror:        true,
		Rotation:      1,
		Magnification: 2,
		Displacement:  Pt(10, 20),
	}
	// (3,4) -> mirror (3,-4) -> rotate (4,3) -> magnify (8,6) -> displace.
	assert.Equal(t, Pt(18, 26), tf.Apply(Pt(3, 4)))
}

func TestTransformZeroMagnificationIsIdentityScale(t *testing.T) {
	t.Parallel()
	tf := Transform{Displacement: Pt(1, 1)}
	assert.Equal(t, Pt(3, 4), tf.Apply(Pt(2, 3)))
}

func TestTransformThenMatchesSequentialApplication(t *testing.T) {
	t.Parallel()
	transforms := []Transform{
		IdentityTransform(),
		Translation(Pt(5, -3)),
		{Rotation: 1, Magnification: 1},
		{Mirror: true, Magnification: 1, Displacement: Pt(-2, 7)},
		{Mirror: true, Rotation: 3, Magnification: 2, Displacement: Pt(100, 0)},
	}
	points := []Point{Pt(0, 0), Pt(1, 0), Pt(-3, 5), Pt(7, -11)}

	for _, t1 := range transforms {
		for _, t2 := range transforms {
			composed := t1.Then(t2)
			for _, p := range points {
				assert.Equal(t, t2.Apply(t1.Apply(p)), composed.Apply(p),
					"t1=%+v t2=%+v p=%+v", t1, t2, p)
			}
		}
	}
}

func TestTransformInverseRoundtrips(t *testing.T) {
	t.Parallel()
	transforms := []Transform{
		IdentityTransform(),
		Translation(Pt(5, -3)),
		{Rotation: 1, Magnification: 1},
		{Rotation: 3, Magnification: 1, Displacement: Pt(9, 9)},
		{Mirror: true, Magnification: 1, Displacement: Pt(-2, 7)},
		{Mirror: true, Rotation: 2, Magnification: 1, Displacement: Pt(100, -40)},
	}
	points := []Point{Pt(0, 0), Pt(1, 0), Pt(-3, 5), Pt(7, -11)}

	for _, tf := range transforms {
		inv, ok := tf.Inverse()
		require.True(t, ok, "tf=%+v", tf)
		assert.True(t, tf.Then(inv).IsIdentity(), "tf=%+v inv=%+v", tf, inv)
		assert.True(t, inv.Then(tf).IsIdentity(), "tf=%+v inv=%+v", tf, inv)
		for _, p := range points {
			assert.Equal(t, p, inv.Apply(tf.Apply(p)), "tf=%+v p=%+v", tf, p)
		}
	}
}

func TestTransformInverseRejectsMagnification(t *testing.T) {
	t.Parallel()
	_, ok := Transform{Magnification: 2}.Inverse()
	assert.False(t, ok)
}

func TestTransformApplyRectNormalizes(t *testing.T) {
	t.Parallel()
	tf := Transform{Rotation: 1, Magnification: 1}
	got := tf.ApplyRect(RectOf(0, 0, 10, 5))
	assert.Equal(t, RectOf(-5, 0, 0, 10), got)
}

func TestPolygonAreaAndWinding(t *testing.T) {
	t.Parallel()
	ccw := PolygonOf(Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10))
	assert.Equal(t, int64(200), ccw.DoubledSignedArea())
	assert.True(t, ccw.IsCounterClockwise())
	assert.InDelta(t, 100.0, ccw.Area(), 1e-9)

	cw := PolygonOf(Pt(0, 0), Pt(0, 10), Pt(10, 10), Pt(10, 0))
	assert.False(t, cw.IsCounterClockwise())
	assert.True(t, cw.Normalized().IsCounterClockwise())
	assert.InDelta(t, 100.0, cw.Area(), 1e-9)
}

func TestPolygonContainsPoint(t *testing.T) {
	t.Parallel()
	p := PolygonOf(Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10))
	assert.True(t, p.ContainsPoint(Pt(5, 5)))
	assert.False(t, p.ContainsPoint(Pt(15, 5)))
	assert.False(t, p.ContainsPoint(Pt(-1, -1)))
}

func TestGeometryBoundingBoxes(t *testing.T) {
	t.Parallel()
	r := RectOf(0, 0, 4, 4)
	box, ok := r.BoundingBox()
	require.True(t, ok)
	assert.Equal(t, r, box)

	poly := PolygonOf(Pt(1, 2), Pt(5, 2), Pt(3, 8))
	box, ok = poly.BoundingBox()
	require.True(t, ok)
	assert.Equal(t, RectOf(1, 2, 5, 8), box)

	_, ok = SimplePolygon{}.BoundingBox()
	assert.False(t, ok)

	// A path's box grows by half its width.
	path := PathOf(10, Pt(0, 0), Pt(20, 0))
	box, ok = path.BoundingBox()
	require.True(t, ok)
	assert.Equal(t, RectOf(-5, -5, 25, 5), box)

	text := TextAt(Pt(3, 4), "VDD")
	box, ok = text.BoundingBox()
	require.True(t, ok)
	assert.Equal(t, Rect{Min: Pt(3, 4), Max: Pt(3, 4)}, box)
}

func TestGeometryTransformed(t *testing.T) {
	t.Parallel()
	tf := Translation(Pt(100, 200))

	g := Geometry(RectOf(0, 0, 10, 10)).Transformed(tf)
	assert.Equal(t, RectOf(100, 200, 110, 210), g)

	g = Geometry(PolygonOf(Pt(0, 0), Pt(4, 0), Pt(0, 4))).Transformed(tf)
	poly, ok := g.(SimplePolygon)
	require.True(t, ok)
	assert.Equal(t, []Point{Pt(100, 200), Pt(104, 200), Pt(100, 204)}, poly.Points)
}

func TestPolygonUnionMergesOverlap(t *testing.T) {
	t.Parallel()
	a := ToPolygon(RectOf(0, 0, 10, 10))
	b := ToPolygon(RectOf(5, 0, 15, 10))

	merged := PolygonUnion(append(a, b...))
	require.Len(t, merged, 1)

	var area float64
	for _, p := range merged {
		area += p.Area()
	}
	assert.InDelta(t, 150.0, area, 1e-9)
}

func TestPolygonUnionFoldsManyPolygons(t *testing.T) {
	t.Parallel()
	// A chain of rects, each overlapping the previous by half.
	var polys []SimplePolygon
	for i := int64(0); i < 4; i++ {
		polys = append(polys, ToPolygon(RectOf(i*5, 0, i*5+10, 10))...)
	}

	merged := PolygonUnion(polys)
	require.Len(t, merged, 1)

	var area float64
	for _, p := range merged {
		area += p.Area()
	}
	// The chain covers x in [0, 25].
	assert.InDelta(t, 250.0, area, 1e-9)

	// Disjoint polygons stay separate.
	disjoint := PolygonUnion(append(
		ToPolygon(RectOf(0, 0, 10, 10)),
		ToPolygon(RectOf(20, 0, 30, 10))...))
	assert.Len(t, disjoint, 2)
}

func TestPolygonBooleanEmptyOperands(t *testing.T) {
	t.Parallel()
	a := ToPolygon(RectOf(0, 0, 10, 10))

	assert.Nil(t, PolygonIntersection(a, nil))
	assert.Nil(t, PolygonDifference(nil, a))
	assert.Len(t, PolygonDifference(a, nil), 1)
	assert.Len(t, PolygonXor(nil, a), 1)
	assert.Nil(t, PolygonUnion(nil))
}

func TestPolygonIntersectionAndDifference(t *testing.T) {
	t.Parallel()
	a := ToPolygon(RectOf(0, 0, 10, 10))
	b := ToPolygon(RectOf(5, 0, 15, 10))

	overlap := PolygonIntersection(a, b)
	var area float64
	for _, p := range overlap {
		area += p.Area()
	}
	assert.InDelta(t, 50.0, area, 1e-9)

	rest := PolygonDifference(a, b)
	area = 0
	for _, p := range rest {
		area += p.Area()
	}
	assert.InDelta(t, 50.0, area, 1e-9)
}

func TestToPolygonPath(t *testing.T) {
	t.Parallel()
	// An L-shaped wire of width 2.
	path := PathOf(2, Pt(0, 0), Pt(10, 0), Pt(10, 10))
	polys := ToPolygon(path)
	require.NotEmpty(t, polys)

	var area float64
	for _, p := range polys {
		area += p.Area()
	}
	// Two 12x2 segment boxes overlapping in a 2x2 corner square.
	assert.InDelta(t, 44.0, area, 1e-9)
}
