package libredadb

// Geometry is the sum of shape kinds a layout can hold on a layer.
// Rect, SimplePolygon, Path, Text and Point all implement it.
type Geometry interface {
	// BoundingBox returns the axis-aligned bounding box of the shape.
	// The second result is false for degenerate shapes without any
	// vertices (an empty polygon or path).
	BoundingBox() (Rect, bool)
	// Transformed returns the shape mapped by the given transform.
	Transformed(t Transform) Geometry
	// GeometryKind returns a stable textual tag ("rect", "polygon",
	// "path", "text", "point") used for serialization.
	GeometryKind() string
}

// BoundingBox implements Geometry.
func (r Rect) BoundingBox() (Rect, bool) {
	return r.Normalized(), true
}

// Transformed implements Geometry. Rectangles stay rectangles because
// rotations are restricted to quarter turns.
func (r Rect) Transformed(t Transform) Geometry {
	return t.ApplyRect(r)
}

// GeometryKind implements Geometry.
func (r Rect) GeometryKind() string { return "rect" }

// BoundingBox implements Geometry.
func (p SimplePolygon) BoundingBox() (Rect, bool) {
	if len(p.Points) == 0 {
		return Rect{}, false
	}
	box := Rect{Min: p.Points[0], Max: p.Points[0]}
	for _, pt := range p.Points[1:] {
		box = box.UnionPoint(pt)
	}
	return box, true
}

// Transformed implements Geometry.
func (p SimplePolygon) Transformed(t Transform) Geometry {
	out := make([]Point, len(p.Points))
	for i, pt := range p.Points {
		out[i] = t.Apply(pt)
	}
	return SimplePolygon{Points: out}
}

// GeometryKind implements Geometry.
func (p SimplePolygon) GeometryKind() string { return "polygon" }

// BoundingBox implements Geometry. The box of the center line is grown
// by half the width on all sides.
func (p Path) BoundingBox() (Rect, bool) {
	if len(p.Points) == 0 {
		return Rect{}, false
	}
	box := Rect{Min: p.Points[0], Max: p.Points[0]}
	for _, pt := range p.Points[1:] {
		box = box.UnionPoint(pt)
	}
	return box.Expanded(p.Width / 2), true
}

// Transformed implements Geometry.
func (p Path) Transformed(t Transform) Geometry {
	out := make([]Point, len(p.Points))
	for i, pt := range p.Points {
		out[i] = t.Apply(pt)
	}
	return Path{Points: out, Width: p.Width * t.magnification()}
}

// GeometryKind implements Geometry.
func (p Path) GeometryKind() string { return "path" }

// BoundingBox implements Geometry. A label's box is its anchor point.
func (t Text) BoundingBox() (Rect, bool) {
	return Rect{Min: t.Position, Max: t.Position}, true
}

// Transformed implements Geometry.
func (t Text) Transformed(tf Transform) Geometry {
	return Text{Position: tf.Apply(t.Position), Text: t.Text}
}

// GeometryKind implements Geometry.
func (t Text) GeometryKind() string { return "text" }

// BoundingBox implements Geometry.
func (p Point) BoundingBox() (Rect, bool) {
	return Rect{Min: p, Max: p}, true
}

// Transformed implements Geometry.
func (p Point) Transformed(t Transform) Geometry {
	return t.Apply(p)
}

// GeometryKind implements Geometry.
func (p Point) GeometryKind() string { return "point" }
