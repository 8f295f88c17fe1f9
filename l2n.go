package libredadb

import (
	"fmt"
	"sort"
)

// The fused layout/netlist view: shapes can be tagged with the net they
// carry and the pin they realize. Tagging is optional; untagged shapes
// are plain geometry.

// SetShapeNet links a shape to a net and returns the previously linked
// net (zero if none). Passing net 0 clears the link. Shape and net must
// live in the same cell.
func (c *Chip) SetShapeNet(shape ShapeID, netID NetID) (NetID, error) {
	home, ok := c.shapeHomes[shape]
	if !ok {
		return 0, fmt.Errorf("set net of shape %d: %w", shape, ErrNotFound)
	}
	previous := c.shapeNets[shape]
	if netID == 0 {
		if previous != 0 {
			delete(c.netShapes[previous], shape)
			delete(c.shapeNets, shape)
		}
		return previous, nil
	}
	n, err := c.net(netID)
	if err != nil {
		return 0, fmt.Errorf("set net of shape %d: %w", shape, err)
	}
	if n.parent != home.cell {
		return 0, fmt.Errorf("set net of shape %d: net %d lives in a different cell: %w",
			shape, netID, ErrNotFound)
	}
	if previous != 0 {
		delete(c.netShapes[previous], shape)
	}
	c.shapeNets[shape] = netID
	if c.netShapes[netID] == nil {
		c.netShapes[netID] = make(map[ShapeID]struct{})
	}
	c.netShapes[netID][shape] = struct{}{}
	return previous, nil
}

// ShapeNet returns the net a shape is linked to (zero if none).
func (c *Chip) ShapeNet(shape ShapeID) (NetID, error) {
	if _, ok := c.shapeHomes[shape]; !ok {
		return 0, fmt.Errorf("net of shape %d: %w", shape, ErrNotFound)
	}
	return c.shapeNets[shape], nil
}

// ShapesOfNet returns all shapes linked to the net, sorted for
// determinism.
func (c *Chip) ShapesOfNet(netID NetID) ([]ShapeID, error) {
	if _, err := c.net(netID); err != nil {
		return nil, err
	}
	out := make([]ShapeID, 0, len(c.netShapes[netID]))
	for id := range c.netShapes[netID] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// SetShapePin links a shape to the pin it realizes and returns the
// previously linked pin (zero if none). Passing pin 0 clears the link.
// Shape and pin must live in the same cell.
func (c *Chip) SetShapePin(shape ShapeID, pinID PinID) (PinID, error) {
	home, ok := c.shapeHomes[shape]
	if !ok {
		return 0, fmt.Errorf("set pin of shape %d: %w", shape, ErrNotFound)
	}
	previous := c.shapePins[shape]
	if pinID == 0 {
		if previous != 0 {
			delete(c.pinShapes[previous], shape)
			delete(c.shapePins, shape)
		}
		return previous, nil
	}
	p, err := c.pin(pinID)
	if err != nil {
		return 0, fmt.Errorf("set pin of shape %d: %w", shape, err)
	}
	if p.circuit != home.cell {
		return 0, fmt.Errorf("set pin of shape %d: pin %d lives in a different cell: %w",
			shape, pinID, ErrNotFound)
	}
	if previous != 0 {
		delete(c.pinShapes[previous], shape)
	}
	c.shapePins[shape] = pinID
	if c.pinShapes[pinID] == nil {
		c.pinShapes[pinID] = make(map[ShapeID]struct{})
	}
	c.pinShapes[pinID][shape] = struct{}{}
	return previous, nil
}

// ShapePin returns the pin a shape is linked to (zero if none).
func (c *Chip) ShapePin(shape ShapeID) (PinID, error) {
	if _, ok := c.shapeHomes[shape]; !ok {
		return 0, fmt.Errorf("pin of shape %d: %w", shape, ErrNotFound)
	}
	return c.shapePins[shape], nil
}

// ShapesOfPin returns all shapes linked to the pin, sorted for
// determinism.
func (c *Chip) ShapesOfPin(pinID PinID) ([]ShapeID, error) {
	if _, err := c.pin(pinID); err != nil {
		return nil, err
	}
	out := make([]ShapeID, 0, len(c.pinShapes[pinID]))
	for id := range c.pinShapes[pinID] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// unlinkShape removes all net and pin links of a shape. Used when the
// shape is removed.
func (c *Chip) unlinkShape(shape ShapeID) {
	if netID, ok := c.shapeNets[shape]; ok {
		delete(c.netShapes[netID], shape)
		delete(c.shapeNets, shape)
	}
	if pinID, ok := c.shapePins[shape]; ok {
		delete(c.pinShapes[pinID], shape)
		delete(c.shapePins, shape)
	}
}

// dropShapePinLinks clears the pin link of every shape linked to the
// pin. Used when the pin is removed.
func (c *Chip) dropShapePinLinks(pinID PinID) {
	for shape := range c.pinShapes[pinID] {
		delete(c.shapePins, shape)
	}
	delete(c.pinShapes, pinID)
}
