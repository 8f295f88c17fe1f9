package libredadb

// Transform describes how a cell instance is placed inside its parent:
// an optional mirror at the x axis, followed by a counter-clockwise
// rotation in multiples of 90 degrees, an integer magnification and a
// displacement. This restricted form keeps integer coordinates closed
// under transformation.
type Transform struct {
	// Mirror mirrors at the x axis before rotating.
	Mirror bool
	// Rotation is the number of counter-clockwise quarter turns (0..3).
	Rotation int
	// Magnification scales coordinates. A zero value is treated as 1.
	Magnification Coord
	// Displacement is added last.
	Displacement Point
}

// IdentityTransform returns the transform that maps every point to itself.
func IdentityTransform() Transform {
	return Transform{Magnification: 1}
}

// Translation returns a pure displacement transform.
func Translation(v Point) Transform {
	return Transform{Magnification: 1, Displacement: v}
}

// magnification returns the effective magnification, mapping the zero
// value of Transform to the identity scale.
func (t Transform) magnification() Coord {
	if t.Magnification == 0 {
		return 1
	}
	return t.Magnification
}

// Apply transforms a point: mirror, rotate, magnify, then displace.
func (t Transform) Apply(p Point) Point {
	if t.Mirror {
		p = p.MirrorX()
	}
	p = p.RotateQuarters(t.Rotation)
	p = p.Mul(t.magnification())
	return p.Add(t.Displacement)
}

// ApplyRect transforms a rectangle. The result is normalized; axis
// alignment is preserved because rotations are restricted to quarter turns.
func (t Transform) ApplyRect(r Rect) Rect {
	return RectFromPoints(t.Apply(r.Min), t.Apply(r.Max))
}

// Then returns the transform equivalent to applying t first and u second.
func (t Transform) Then(u Transform) Transform {
	rot := t.Rotation
	if u.Mirror {
		// Mirroring after a rotation flips the sense of the rotation.
		rot = -rot
	}
	return Transform{
		Mirror:        t.Mirror != u.Mirror,
		Rotation:      (((rot+u.Rotation)%4)+4)%4,
		Magnification: t.magnification() * u.magnification(),
		Displacement:  u.Apply(t.Displacement),
	}
}

// Inverse returns the transform undoing t, so t.Then(inv) and
// inv.Then(t) are the identity. Integer coordinates admit an exact
// inverse only for magnification 1; for any other magnification the
// second return value is false.
func (t Transform) Inverse() (Transform, bool) {
	if t.magnification() != 1 {
		return Transform{}, false
	}
	inv := Transform{Mirror: t.Mirror, Magnification: 1}
	if t.Mirror {
		// Mirror and rotation swap order in the inverse, which flips the
		// rotation sense back.
		inv.Rotation = ((t.Rotation % 4) + 4) % 4
	} else {
		inv.Rotation = (((-t.Rotation) % 4) + 4) % 4
	}
	inv.Displacement = inv.Apply(t.Displacement).Neg()
	return inv, true
}

// IsIdentity reports whether the transform maps every point to itself.
func (t Transform) IsIdentity() bool {
	return !t.Mirror && t.Rotation%4 == 0 && t.magnification() == 1 &&
		t.Displacement == Point{}
}
