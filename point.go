package libredadb

import "math"

// Coord is the integer coordinate type used throughout the layout.
// Coordinates are expressed in database units (see Chip.DBU).
type Coord = int64

// Point is a 2D point or vector in database units.
type Point struct {
	X, Y Coord
}

// Pt is a convenience function to create a Point.
func Pt(x, y Coord) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the point scaled by an integer factor.
func (p Point) Mul(s Coord) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Neg returns the point mirrored through the origin.
func (p Point) Neg() Point {
	return Point{X: -p.X, Y: -p.Y}
}

// Dot returns the dot product of two vectors.
func (p Point) Dot(q Point) Coord {
	return p.X*q.X + p.Y*q.Y
}

// Cross returns the 2D cross product (scalar).
func (p Point) Cross(q Point) Coord {
	return p.X*q.Y - p.Y*q.X
}

// ManhattanDistance returns the L1 distance between two points, the
// natural metric for rectilinear routing.
func (p Point) ManhattanDistance(q Point) Coord {
	return absCoord(p.X-q.X) + absCoord(p.Y-q.Y)
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(q Point) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return math.Hypot(dx, dy)
}

// RotateQuarters returns the point rotated counter-clockwise around the
// origin by n quarter turns. n is taken modulo 4.
func (p Point) RotateQuarters(n int) Point {
	switch ((n % 4) + 4) % 4 {
	case 1:
		return Point{X: -p.Y, Y: p.X}
	case 2:
		return Point{X: -p.X, Y: -p.Y}
	case 3:
		return Point{X: p.Y, Y: -p.X}
	default:
		return p
	}
}

// MirrorX returns the point mirrored at the x axis.
func (p Point) MirrorX() Point {
	return Point{X: p.X, Y: -p.Y}
}

func absCoord(c Coord) Coord {
	if c < 0 {
		return -c
	}
	return c
}

func minCoord(a, b Coord) Coord {
	if a < b {
		return a
	}
	return b
}

func maxCoord(a, b Coord) Coord {
	if a > b {
		return a
	}
	return b
}
