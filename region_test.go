package libredadb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapesInRegion(t *testing.T) {
	t.Parallel()
	c := NewChip()
	cell, err := c.CreateCell("A")
	require.NoError(t, err)
	m1 := c.CreateLayer(1, 0)
	m2 := c.CreateLayer(2, 0)

	s1, err := c.InsertShape(cell, m1, RectOf(0, 0, 10, 10))
	require.NoError(t, err)
	s2, err := c.InsertShape(cell, m1, RectOf(100, 100, 110, 110))
	require.NoError(t, err)
	_, err = c.InsertShape(cell, m2, RectOf(0, 0, 10, 10))
	require.NoError(t, err)

	rs := NewRegionSearch(c)

	found, err := rs.ShapesInRegion(cell, m1, RectOf(-5, -5, 50, 50))
	require.NoError(t, err)
	assert.Equal(t, []ShapeID{s1}, found)

	found, err = rs.ShapesInRegion(cell, m1, RectOf(-1000, -1000, 1000, 1000))
	require.NoError(t, err)
	assert.Equal(t, []ShapeID{s1, s2}, found)

	found, err = rs.ShapesInRegion(cell, m1, RectOf(20, 20, 30, 30))
	require.NoError(t, err)
	assert.Empty(t, found)

	// Unknown cells error, empty layers do not.
	_, err = rs.ShapesInRegion(9999, m1, RectOf(0, 0, 1, 1))
	assert.ErrorIs(t, err, ErrNotFound)
	found, err = rs.ShapesInRegion(cell, c.CreateLayer(3, 0), RectOf(0, 0, 1, 1))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestInstancesInRegion(t *testing.T) {
	t.Parallel()
	c := NewChip()
	sub, err := c.CreateCell("SUB")
	require.NoError(t, err)
	top, err := c.CreateCell("TOP")
	require.NoError(t, err)
	m1 := c.CreateLayer(1, 0)
	_, err = c.InsertShape(sub, m1, RectOf(0, 0, 10, 10))
	require.NoError(t, err)

	near, err := c.CreateInstance(top, sub, "near")
	require.NoError(t, err)
	far, err := c.CreateInstance(top, sub, "far")
	require.NoError(t, err)
	_, err = c.SetInstanceTransform(far, Translation(Pt(1000, 1000)))
	require.NoError(t, err)

	rs := NewRegionSearch(c)

	found, err := rs.InstancesInRegion(top, RectOf(0, 0, 50, 50))
	require.NoError(t, err)
	assert.Equal(t, []CellInstID{near}, found)

	found, err = rs.InstancesInRegion(top, RectOf(0, 0, 2000, 2000))
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestCellBoxIncludesInstances(t *testing.T) {
	t.Parallel()
	c := NewChip()
	sub, err := c.CreateCell("SUB")
	require.NoError(t, err)
	top, err := c.CreateCell("TOP")
	require.NoError(t, err)
	m1 := c.CreateLayer(1, 0)
	_, err = c.InsertShape(sub, m1, RectOf(0, 0, 10, 10))
	require.NoError(t, err)
	inst, err := c.CreateInstance(top, sub, "s1")
	require.NoError(t, err)
	_, err = c.SetInstanceTransform(inst, Translation(Pt(30, 0)))
	require.NoError(t, err)
	_, err = c.InsertShape(top, m1, RectOf(0, 0, 5, 5))
	require.NoError(t, err)

	rs := NewRegionSearch(c)

	box, ok := rs.CellBox(sub)
	require.True(t, ok)
	assert.Equal(t, RectOf(0, 0, 10, 10), box)

	box, ok = rs.CellBox(top)
	require.True(t, ok)
	assert.Equal(t, RectOf(0, 0, 40, 10), box)

	empty, err := c.CreateCell("EMPTY")
	require.NoError(t, err)
	rs.Rebuild()
	_, ok = rs.CellBox(empty)
	assert.False(t, ok)
}

func TestRebuildReflectsMutations(t *testing.T) {
	t.Parallel()
	c := NewChip()
	cell, err := c.CreateCell("A")
	require.NoError(t, err)
	m1 := c.CreateLayer(1, 0)
	rs := NewRegionSearch(c)

	found, err := rs.ShapesInRegion(cell, m1, RectOf(0, 0, 10, 10))
	require.NoError(t, err)
	assert.Empty(t, found)

	s1, err := c.InsertShape(cell, m1, RectOf(0, 0, 10, 10))
	require.NoError(t, err)

	// Snapshot semantics: the index does not see the shape until Rebuild.
	found, err = rs.ShapesInRegion(cell, m1, RectOf(0, 0, 10, 10))
	require.NoError(t, err)
	assert.Empty(t, found)

	rs.Rebuild()
	found, err = rs.ShapesInRegion(cell, m1, RectOf(0, 0, 10, 10))
	require.NoError(t, err)
	assert.Equal(t, []ShapeID{s1}, found)
}

func TestPointQuery(t *testing.T) {
	t.Parallel()
	c := NewChip()
	cell, err := c.CreateCell("A")
	require.NoError(t, err)
	m1 := c.CreateLayer(1, 0)
	s1, err := c.InsertShape(cell, m1, RectOf(0, 0, 10, 10))
	require.NoError(t, err)

	rs := NewRegionSearch(c)

	found, err := rs.PointQuery(cell, m1, Pt(5, 5))
	require.NoError(t, err)
	assert.Equal(t, []ShapeID{s1}, found)

	found, err = rs.PointQuery(cell, m1, Pt(50, 50))
	require.NoError(t, err)
	assert.Empty(t, found)
}
