package libredadb

// SimplePolygon is a polygon without holes, given as a ring of vertices.
// The ring is implicitly closed; the last vertex connects back to the
// first.
type SimplePolygon struct {
	Points []Point
}

// PolygonOf creates a SimplePolygon from a list of vertices.
func PolygonOf(points ...Point) SimplePolygon {
	return SimplePolygon{Points: points}
}

// DoubledSignedArea returns twice the signed area of the polygon
// (shoelace formula). The result is positive for counter-clockwise
// orientation. Doubling keeps the value an exact integer.
func (p SimplePolygon) DoubledSignedArea() Coord {
	var sum Coord
	n := len(p.Points)
	for i := 0; i < n; i++ {
		a := p.Points[i]
		b := p.Points[(i+1)%n]
		sum += a.Cross(b)
	}
	return sum
}

// Area returns the absolute area of the polygon.
func (p SimplePolygon) Area() float64 {
	d := p.DoubledSignedArea()
	if d < 0 {
		d = -d
	}
	return float64(d) / 2
}

// IsCounterClockwise reports whether the vertices wind counter-clockwise.
func (p SimplePolygon) IsCounterClockwise() bool {
	return p.DoubledSignedArea() > 0
}

// Normalized returns the polygon with counter-clockwise winding.
func (p SimplePolygon) Normalized() SimplePolygon {
	if len(p.Points) < 3 || p.IsCounterClockwise() {
		return p
	}
	rev := make([]Point, len(p.Points))
	for i, pt := range p.Points {
		rev[len(p.Points)-1-i] = pt
	}
	return SimplePolygon{Points: rev}
}

// ContainsPoint reports whether pt lies strictly inside the polygon,
// using the even-odd rule.
func (p SimplePolygon) ContainsPoint(pt Point) bool {
	inside := false
	n := len(p.Points)
	for i := 0; i < n; i++ {
		a := p.Points[i]
		b := p.Points[(i+1)%n]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			// Crossing test on the x coordinate of the edge at pt.Y,
			// kept in integer arithmetic.
			dx := b.X - a.X
			dy := b.Y - a.Y
			lhs := (pt.X - a.X) * dy
			rhs := (pt.Y - a.Y) * dx
			if dy > 0 {
				if lhs < rhs {
					inside = !inside
				}
			} else {
				if lhs > rhs {
					inside = !inside
				}
			}
		}
	}
	return inside
}
