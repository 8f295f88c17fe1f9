package libredadb

// Rect is an axis-aligned rectangle. Min is the lower-left corner and Max
// the upper-right corner; a Rect produced by RectOf or Normalized always
// satisfies Min.X <= Max.X and Min.Y <= Max.Y.
type Rect struct {
	Min, Max Point
}

// RectOf creates a normalized rectangle from two opposite corners given
// as coordinates in any order.
func RectOf(x1, y1, x2, y2 Coord) Rect {
	return Rect{
		Min: Point{X: minCoord(x1, x2), Y: minCoord(y1, y2)},
		Max: Point{X: maxCoord(x1, x2), Y: maxCoord(y1, y2)},
	}
}

// RectFromPoints creates a normalized rectangle spanning two corner points.
func RectFromPoints(a, b Point) Rect {
	return RectOf(a.X, a.Y, b.X, b.Y)
}

// Normalized returns the rectangle with corners swapped as needed so that
// Min is the lower-left and Max the upper-right corner.
func (r Rect) Normalized() Rect {
	return RectOf(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

// Width returns the horizontal extent.
func (r Rect) Width() Coord {
	return r.Max.X - r.Min.X
}

// Height returns the vertical extent.
func (r Rect) Height() Coord {
	return r.Max.Y - r.Min.Y
}

// Area returns the area in square database units.
func (r Rect) Area() Coord {
	return r.Width() * r.Height()
}

// Center returns the center point, rounded towards Min.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Union returns the smallest rectangle containing both r and q.
func (r Rect) Union(q Rect) Rect {
	return Rect{
		Min: Point{X: minCoord(r.Min.X, q.Min.X), Y: minCoord(r.Min.Y, q.Min.Y)},
		Max: Point{X: maxCoord(r.Max.X, q.Max.X), Y: maxCoord(r.Max.Y, q.Max.Y)},
	}
}

// UnionPoint returns the smallest rectangle containing r and p.
func (r Rect) UnionPoint(p Point) Rect {
	return Rect{
		Min: Point{X: minCoord(r.Min.X, p.X), Y: minCoord(r.Min.Y, p.Y)},
		Max: Point{X: maxCoord(r.Max.X, p.X), Y: maxCoord(r.Max.Y, p.Y)},
	}
}

// Intersection returns the overlapping region of r and q. The second
// result is false when the rectangles do not intersect.
func (r Rect) Intersection(q Rect) (Rect, bool) {
	out := Rect{
		Min: Point{X: maxCoord(r.Min.X, q.Min.X), Y: maxCoord(r.Min.Y, q.Min.Y)},
		Max: Point{X: minCoord(r.Max.X, q.Max.X), Y: minCoord(r.Max.Y, q.Max.Y)},
	}
	if out.Min.X > out.Max.X || out.Min.Y > out.Max.Y {
		return Rect{}, false
	}
	return out, true
}

// Intersects reports whether r and q share at least one point.
// Touching edges count as intersecting.
func (r Rect) Intersects(q Rect) bool {
	return r.Min.X <= q.Max.X && q.Min.X <= r.Max.X &&
		r.Min.Y <= q.Max.Y && q.Min.Y <= r.Max.Y
}

// ContainsPoint reports whether p lies inside r, boundary included.
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// ContainsRect reports whether q lies fully inside r, boundary included.
func (r Rect) ContainsRect(q Rect) bool {
	return r.ContainsPoint(q.Min) && r.ContainsPoint(q.Max)
}

// Expanded returns the rectangle grown by d on all four sides.
func (r Rect) Expanded(d Coord) Rect {
	return Rect{
		Min: Point{X: r.Min.X - d, Y: r.Min.Y - d},
		Max: Point{X: r.Max.X + d, Y: r.Max.Y + d},
	}
}

// Translated returns the rectangle shifted by the vector v.
func (r Rect) Translated(v Point) Rect {
	return Rect{Min: r.Min.Add(v), Max: r.Max.Add(v)}
}
