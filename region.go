package libredadb

import (
	"fmt"
	"sort"

	"github.com/tidwall/rtree"
)

// RegionSearch is a spatial index layered over a chip. It keeps one
// R-tree per cell and layer for shapes and one per cell for child
// instances, so rectangle queries avoid scanning whole cells.
//
// The index is a snapshot: build it with NewRegionSearch after the chip
// reaches the state you want to query, or call Rebuild after mutations.
type RegionSearch struct {
	chip       *Chip
	shapeTrees map[CellID]map[LayerID]*rtree.RTreeG[ShapeID]
	instTrees  map[CellID]*rtree.RTreeG[CellInstID]
	cellBoxes  map[CellID]Rect
}

// NewRegionSearch builds a spatial index over the whole chip.
func NewRegionSearch(c *Chip) *RegionSearch {
	rs := &RegionSearch{chip: c}
	rs.Rebuild()
	return rs
}

// Rebuild discards and reconstructs the index from the current chip
// state. Cells are processed bottom-up so instance entries can reuse
// the already computed box of their template.
func (rs *RegionSearch) Rebuild() {
	c := rs.chip
	rs.shapeTrees = make(map[CellID]map[LayerID]*rtree.RTreeG[ShapeID], len(c.circuits))
	rs.instTrees = make(map[CellID]*rtree.RTreeG[CellInstID], len(c.circuits))
	rs.cellBoxes = make(map[CellID]Rect, len(c.circuits))

	for _, cell := range c.CellsBottomUp() {
		circ := c.circuits[cell]
		var box Rect
		have := false
		grow := func(b Rect) {
			if have {
				box = box.Union(b)
			} else {
				box = b
				have = true
			}
		}

		layerTrees := make(map[LayerID]*rtree.RTreeG[ShapeID], len(circ.shapes))
		for layer, layerShapes := range circ.shapes {
			tree := &rtree.RTreeG[ShapeID]{}
			for shapeID, g := range layerShapes {
				b, ok := g.BoundingBox()
				if !ok {
					continue
				}
				tree.Insert(rectMin(b), rectMax(b), shapeID)
				grow(b)
			}
			if tree.Len() > 0 {
				layerTrees[layer] = tree
			}
		}
		rs.shapeTrees[cell] = layerTrees

		instTree := &rtree.RTreeG[CellInstID]{}
		for instID := range circ.instances {
			inst := c.instances[instID]
			sub, ok := rs.cellBoxes[inst.template]
			if !ok {
				continue
			}
			b := inst.transform.ApplyRect(sub)
			instTree.Insert(rectMin(b), rectMax(b), instID)
			grow(b)
		}
		rs.instTrees[cell] = instTree

		if have {
			rs.cellBoxes[cell] = box
		}
	}
}

func rectMin(r Rect) [2]float64 { return [2]float64{float64(r.Min.X), float64(r.Min.Y)} }
func rectMax(r Rect) [2]float64 { return [2]float64{float64(r.Max.X), float64(r.Max.Y)} }

// ShapesInRegion returns the shapes on one layer of a cell whose
// bounding boxes intersect the query rectangle, sorted for determinism.
func (rs *RegionSearch) ShapesInRegion(cell CellID, layer LayerID, query Rect) ([]ShapeID, error) {
	layerTrees, ok := rs.shapeTrees[cell]
	if !ok {
		return nil, fmt.Errorf("region query: cell %d: %w", cell, ErrNotFound)
	}
	tree, ok := layerTrees[layer]
	if !ok {
		return nil, nil
	}
	query = query.Normalized()
	var out []ShapeID
	tree.Search(rectMin(query), rectMax(query),
		func(_, _ [2]float64, id ShapeID) bool {
			out = append(out, id)
			return true
		})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// InstancesInRegion returns the child instances of a cell whose
// transformed bounding boxes intersect the query rectangle, sorted for
// determinism.
func (rs *RegionSearch) InstancesInRegion(cell CellID, query Rect) ([]CellInstID, error) {
	tree, ok := rs.instTrees[cell]
	if !ok {
		return nil, fmt.Errorf("region query: cell %d: %w", cell, ErrNotFound)
	}
	query = query.Normalized()
	var out []CellInstID
	tree.Search(rectMin(query), rectMax(query),
		func(_, _ [2]float64, id CellInstID) bool {
			out = append(out, id)
			return true
		})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// CellBox returns the indexed bounding box of a cell. The second result
// is false for cells without any extent.
func (rs *RegionSearch) CellBox(cell CellID) (Rect, bool) {
	box, ok := rs.cellBoxes[cell]
	return box, ok
}

// PointQuery returns the shapes on one layer of a cell whose bounding
// boxes contain the point.
func (rs *RegionSearch) PointQuery(cell CellID, layer LayerID, p Point) ([]ShapeID, error) {
	return rs.ShapesInRegion(cell, layer, Rect{Min: p, Max: p})
}
