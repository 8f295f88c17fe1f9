package libredadb

import (
	polyclip "github.com/ctessum/polyclip-go"
)

// BoolOp selects a polygon boolean operation.
type BoolOp int

const (
	// BoolUnion keeps the area covered by either operand.
	BoolUnion BoolOp = iota
	// BoolIntersection keeps the area covered by both operands.
	BoolIntersection
	// BoolDifference keeps the area of the first operand not covered by
	// the second.
	BoolDifference
	// BoolXor keeps the area covered by exactly one operand.
	BoolXor
)

func (op BoolOp) polyclipOp() polyclip.Op {
	switch op {
	case BoolIntersection:
		return polyclip.INTERSECTION
	case BoolDifference:
		return polyclip.DIFFERENCE
	case BoolXor:
		return polyclip.XOR
	default:
		return polyclip.UNION
	}
}

// PolygonBoolean applies a boolean operation to two sets of polygons.
// Input polygons may overlap each other; each operand is merged into
// disjoint contours before the operation. Vertices of the result are
// rounded to the nearest database unit.
func PolygonBoolean(op BoolOp, subject, clip []SimplePolygon) []SimplePolygon {
	s := unionPolyclip(subject)
	c := unionPolyclip(clip)
	// Construct misbehaves on empty operands; resolve those directly.
	if len(c) == 0 {
		if op == BoolIntersection {
			return nil
		}
		return fromPolyclip(s)
	}
	if len(s) == 0 {
		if op == BoolUnion || op == BoolXor {
			return fromPolyclip(c)
		}
		return nil
	}
	return fromPolyclip(s.Construct(op.polyclipOp(), c))
}

// PolygonUnion merges a set of polygons into disjoint polygons.
func PolygonUnion(polygons []SimplePolygon) []SimplePolygon {
	return PolygonBoolean(BoolUnion, polygons, nil)
}

// PolygonIntersection returns the common area of two polygon sets.
func PolygonIntersection(a, b []SimplePolygon) []SimplePolygon {
	return PolygonBoolean(BoolIntersection, a, b)
}

// PolygonDifference returns the area of a not covered by b.
func PolygonDifference(a, b []SimplePolygon) []SimplePolygon {
	return PolygonBoolean(BoolDifference, a, b)
}

// PolygonXor returns the area covered by exactly one of a and b.
func PolygonXor(a, b []SimplePolygon) []SimplePolygon {
	return PolygonBoolean(BoolXor, a, b)
}

// ToPolygon converts any area-carrying geometry to polygons. Rects map to
// a single four-vertex polygon, paths are traced to their rectilinear
// outline, polygons pass through. Texts and points have no area and map
// to nil.
func ToPolygon(g Geometry) []SimplePolygon {
	switch s := g.(type) {
	case Rect:
		r := s.Normalized()
		return []SimplePolygon{PolygonOf(
			r.Min,
			Point{X: r.Max.X, Y: r.Min.Y},
			r.Max,
			Point{X: r.Min.X, Y: r.Max.Y},
		)}
	case SimplePolygon:
		if len(s.Points) < 3 {
			return nil
		}
		return []SimplePolygon{s.Normalized()}
	case Path:
		return pathOutline(s)
	default:
		return nil
	}
}

// pathOutline approximates a path by one rectangle per segment, merged
// into a single outline. Exact for rectilinear wires with square ends.
func pathOutline(p Path) []SimplePolygon {
	if len(p.Points) < 2 || p.Width <= 0 {
		return nil
	}
	half := p.Width / 2
	var segs []SimplePolygon
	for i := 1; i < len(p.Points); i++ {
		a, b := p.Points[i-1], p.Points[i]
		box := RectFromPoints(a, b).Expanded(half)
		segs = append(segs, ToPolygon(box)...)
	}
	return PolygonUnion(segs)
}

// unionPolyclip folds a set of possibly overlapping polygons into one
// polyclip polygon of disjoint contours. Handing overlapping contours to
// Construct as a single multi-contour operand would leave them unmerged,
// so the union is built one polygon at a time.
func unionPolyclip(polys []SimplePolygon) polyclip.Polygon {
	var acc polyclip.Polygon
	for _, p := range polys {
		if len(p.Points) < 3 {
			continue
		}
		contour := make(polyclip.Contour, len(p.Points))
		for i, pt := range p.Points {
			contour[i] = polyclip.Point{X: float64(pt.X), Y: float64(pt.Y)}
		}
		one := polyclip.Polygon{contour}
		if len(acc) == 0 {
			acc = one
			continue
		}
		acc = acc.Construct(polyclip.UNION, one)
	}
	return acc
}

func fromPolyclip(p polyclip.Polygon) []SimplePolygon {
	var out []SimplePolygon
	for _, contour := range p {
		if len(contour) < 3 {
			continue
		}
		points := make([]Point, len(contour))
		for i, pt := range contour {
			points[i] = Point{X: roundCoord(pt.X), Y: roundCoord(pt.Y)}
		}
		out = append(out, SimplePolygon{Points: points})
	}
	return out
}

func roundCoord(f float64) Coord {
	if f >= 0 {
		return Coord(f + 0.5)
	}
	return Coord(f - 0.5)
}
