package libredadb

// Path is a wire: a center line with a width. Ends are squared off flush
// with the end points.
type Path struct {
	Points []Point
	Width  Coord
}

// PathOf creates a Path with the given width along the given center line.
func PathOf(width Coord, points ...Point) Path {
	return Path{Points: points, Width: width}
}

// Length returns the Manhattan length of the center line.
func (p Path) Length() Coord {
	var l Coord
	for i := 1; i < len(p.Points); i++ {
		l += p.Points[i-1].ManhattanDistance(p.Points[i])
	}
	return l
}

// Text is a label anchored at a position. Labels carry no area; their
// bounding box is the anchor point.
type Text struct {
	Position Point
	Text     string
}

// TextAt creates a text label.
func TextAt(pos Point, s string) Text {
	return Text{Position: pos, Text: s}
}
