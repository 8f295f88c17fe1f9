package libredadb

import (
	"fmt"
	"sort"
)

// CreateLayer creates a layer identified by an (index, datatype) pair.
// Creating an existing pair returns the existing layer.
func (c *Chip) CreateLayer(index, datatype uint32) LayerID {
	pair := layerPair{index: index, datatype: datatype}
	if id, ok := c.layersByPair[pair]; ok {
		return id
	}
	c.nextLayer++
	id := LayerID(c.nextLayer)
	c.layerInfo[id] = &LayerInfo{Index: index, Datatype: datatype}
	c.layersByPair[pair] = id
	return id
}

// FindLayer looks a layer up by its (index, datatype) pair.
func (c *Chip) FindLayer(index, datatype uint32) (LayerID, bool) {
	id, ok := c.layersByPair[layerPair{index: index, datatype: datatype}]
	return id, ok
}

// LayerByName finds a layer by its name.
func (c *Chip) LayerByName(name string) (LayerID, bool) {
	id, ok := c.layersByName[name]
	return id, ok
}

// SetLayerName names a layer. An empty name clears the name. Returns the
// previous name.
func (c *Chip) SetLayerName(layer LayerID, name string) (string, error) {
	info, err := c.layer(layer)
	if err != nil {
		return "", fmt.Errorf("set layer name: %w", err)
	}
	if name != "" {
		if other, exists := c.layersByName[name]; exists && other != layer {
			return "", fmt.Errorf("set layer name %q: %w", name, ErrDuplicateName)
		}
	}
	previous := info.Name
	if previous != "" {
		delete(c.layersByName, previous)
	}
	info.Name = name
	if name != "" {
		c.layersByName[name] = layer
	}
	return previous, nil
}

// Layer returns the descriptor of a layer.
func (c *Chip) Layer(layer LayerID) (LayerInfo, error) {
	info, err := c.layer(layer)
	if err != nil {
		return LayerInfo{}, err
	}
	return *info, nil
}

// Layers returns all layer IDs, sorted for determinism.
func (c *Chip) Layers() []LayerID {
	out := make([]LayerID, 0, len(c.layerInfo))
	for id := range c.layerInfo {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InsertShape places a geometry on a layer of a cell and returns the new
// shape's ID. Shape IDs are unique across the whole chip.
func (c *Chip) InsertShape(cell CellID, layer LayerID, g Geometry) (ShapeID, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, fmt.Errorf("insert shape: %w", err)
	}
	if _, err := c.layer(layer); err != nil {
		return 0, fmt.Errorf("insert shape in %q: %w", circ.name, err)
	}
	c.nextShape++
	id := ShapeID(c.nextShape)
	layerShapes, ok := circ.shapes[layer]
	if !ok {
		layerShapes = make(map[ShapeID]Geometry)
		circ.shapes[layer] = layerShapes
	}
	layerShapes[id] = g
	c.shapeHomes[id] = shapeHome{cell: cell, layer: layer}
	return id, nil
}

// RemoveShape removes a shape and returns its geometry.
func (c *Chip) RemoveShape(shape ShapeID) (Geometry, error) {
	home, ok := c.shapeHomes[shape]
	if !ok {
		return nil, fmt.Errorf("remove shape %d: %w", shape, ErrNotFound)
	}
	g := c.circuits[home.cell].shapes[home.layer][shape]
	delete(c.circuits[home.cell].shapes[home.layer], shape)
	delete(c.shapeHomes, shape)
	c.unlinkShape(shape)
	return g, nil
}

// ReplaceShape swaps the geometry of a shape and returns the previous
// geometry. Net and pin links are preserved.
func (c *Chip) ReplaceShape(shape ShapeID, g Geometry) (Geometry, error) {
	home, ok := c.shapeHomes[shape]
	if !ok {
		return nil, fmt.Errorf("replace shape %d: %w", shape, ErrNotFound)
	}
	layerShapes := c.circuits[home.cell].shapes[home.layer]
	previous := layerShapes[shape]
	layerShapes[shape] = g
	return previous, nil
}

// ShapeGeometry returns the geometry of a shape.
func (c *Chip) ShapeGeometry(shape ShapeID) (Geometry, error) {
	home, ok := c.shapeHomes[shape]
	if !ok {
		return nil, fmt.Errorf("shape %d: %w", shape, ErrNotFound)
	}
	return c.circuits[home.cell].shapes[home.layer][shape], nil
}

// ShapeHome returns the cell and layer that contain a shape.
func (c *Chip) ShapeHome(shape ShapeID) (CellID, LayerID, error) {
	home, ok := c.shapeHomes[shape]
	if !ok {
		return 0, 0, fmt.Errorf("shape %d: %w", shape, ErrNotFound)
	}
	return home.cell, home.layer, nil
}

// EachShape calls f for every shape on the given layer of the cell.
func (c *Chip) EachShape(cell CellID, layer LayerID, f func(ShapeID, Geometry)) error {
	circ, err := c.circuit(cell)
	if err != nil {
		return err
	}
	for id, g := range circ.shapes[layer] {
		f(id, g)
	}
	return nil
}

// Shapes returns the shapes on the given layer of the cell, sorted for
// determinism.
func (c *Chip) Shapes(cell CellID, layer LayerID) ([]ShapeID, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return nil, err
	}
	out := make([]ShapeID, 0, len(circ.shapes[layer]))
	for id := range circ.shapes[layer] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// NumShapes returns the number of shapes on the given layer of the cell.
func (c *Chip) NumShapes(cell CellID, layer LayerID) (int, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, err
	}
	return len(circ.shapes[layer]), nil
}

// LayerBoundingBox returns the bounding box of the cell's own shapes on
// one layer, excluding child instances. The second result is false when
// the layer holds no shapes with an extent.
func (c *Chip) LayerBoundingBox(cell CellID, layer LayerID) (Rect, bool, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return Rect{}, false, err
	}
	var box Rect
	have := false
	for _, g := range circ.shapes[layer] {
		b, ok := g.BoundingBox()
		if !ok {
			continue
		}
		if have {
			box = box.Union(b)
		} else {
			box = b
			have = true
		}
	}
	return box, have, nil
}

// BoundingBox returns the bounding box of a cell including all shapes on
// all layers and all (transformed) child instances, recursively. The
// second result is false for an empty cell.
func (c *Chip) BoundingBox(cell CellID) (Rect, bool, error) {
	if _, err := c.circuit(cell); err != nil {
		return Rect{}, false, err
	}
	cache := make(map[CellID]*Rect)
	box := c.boundingBox(cell, cache)
	if box == nil {
		return Rect{}, false, nil
	}
	return *box, true, nil
}

func (c *Chip) boundingBox(cell CellID, cache map[CellID]*Rect) *Rect {
	if box, ok := cache[cell]; ok {
		return box
	}
	circ := c.circuits[cell]
	var box *Rect
	add := func(b Rect) {
		if box == nil {
			box = &Rect{Min: b.Min, Max: b.Max}
		} else {
			*box = box.Union(b)
		}
	}
	for layer := range circ.shapes {
		if b, ok, _ := c.LayerBoundingBox(cell, layer); ok {
			add(b)
		}
	}
	for instID := range circ.instances {
		inst := c.instances[instID]
		sub := c.boundingBox(inst.template, cache)
		if sub != nil {
			add(inst.transform.ApplyRect(*sub))
		}
	}
	cache[cell] = box
	return box
}

// InstanceTransform returns the placement transform of a cell instance.
func (c *Chip) InstanceTransform(instID CellInstID) (Transform, error) {
	inst, err := c.instance(instID)
	if err != nil {
		return Transform{}, err
	}
	return inst.transform, nil
}

// SetInstanceTransform sets the placement transform of a cell instance
// and returns the previous transform.
func (c *Chip) SetInstanceTransform(instID CellInstID, tf Transform) (Transform, error) {
	inst, err := c.instance(instID)
	if err != nil {
		return Transform{}, err
	}
	previous := inst.transform
	inst.transform = tf
	return previous, nil
}

// MergedRegion returns the union of all area-carrying shapes on one
// layer of a cell as a set of disjoint polygons.
func (c *Chip) MergedRegion(cell CellID, layer LayerID) ([]SimplePolygon, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return nil, err
	}
	var polys []SimplePolygon
	for _, g := range circ.shapes[layer] {
		polys = append(polys, ToPolygon(g)...)
	}
	if polys == nil {
		return nil, nil
	}
	return PolygonUnion(polys), nil
}
