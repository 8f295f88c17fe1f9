package libredadb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoCreate(t *testing.T) {
	t.Parallel()
	u := NewUndoStack(NewChip())

	cell, err := u.CreateCell("A")
	require.NoError(t, err)
	net, err := u.CreateNet(cell, "n1")
	require.NoError(t, err)
	assert.Equal(t, 2, u.Len())

	require.NoError(t, u.Undo())
	_, err = u.NetName(net)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, u.Undo())
	assert.Zero(t, u.NumCells())
	assert.Zero(t, u.Len())

	// An empty stack is a no-op.
	assert.NoError(t, u.Undo())
}

func TestUndoRename(t *testing.T) {
	t.Parallel()
	u := NewUndoStack(NewChip())
	cell, err := u.CreateCell("A")
	require.NoError(t, err)
	require.NoError(t, u.RenameCell(cell, "B"))

	require.NoError(t, u.Undo())
	name, err := u.CellName(cell)
	require.NoError(t, err)
	assert.Equal(t, "A", name)
}

func TestUndoConnectPin(t *testing.T) {
	t.Parallel()
	u := NewUndoStack(NewChip())
	cell, err := u.CreateCell("A")
	require.NoError(t, err)
	pin, err := u.CreatePin(cell, "X", DirectionInput)
	require.NoError(t, err)
	n1, err := u.CreateNet(cell, "n1")
	require.NoError(t, err)
	n2, err := u.CreateNet(cell, "n2")
	require.NoError(t, err)

	_, err = u.ConnectPin(pin, n1)
	require.NoError(t, err)
	_, err = u.ConnectPin(pin, n2)
	require.NoError(t, err)

	// Undo the reconnect: back to n1.
	require.NoError(t, u.Undo())
	netID, err := u.NetOfPin(pin)
	require.NoError(t, err)
	assert.Equal(t, n1, netID)

	// Undo the first connect: back to unconnected.
	require.NoError(t, u.Undo())
	netID, err = u.NetOfPin(pin)
	require.NoError(t, err)
	assert.Zero(t, netID)
}

func TestUndoRemoveInstanceRestoresConnections(t *testing.T) {
	t.Parallel()
	c := NewChip()
	buf, inv := newBuffer(t, c)
	u := NewUndoStack(c)

	u1, ok := u.InstanceByName(buf, "u1")
	require.True(t, ok)
	tf := Transform{Mirror: true, Magnification: 1, Displacement: Pt(5, 5)}
	_, err := c.SetInstanceTransform(u1, tf)
	require.NoError(t, err)

	a, ok := u.NetByName(buf, "a")
	require.True(t, ok)
	mid, ok := u.NetByName(buf, "mid")
	require.True(t, ok)

	require.NoError(t, u.RemoveInstance(u1))
	_, ok = u.InstanceByName(buf, "u1")
	require.False(t, ok)

	require.NoError(t, u.Undo())

	restored, ok := u.InstanceByName(buf, "u1")
	require.True(t, ok)
	assert.NotEqual(t, u1, restored, "restored objects get fresh IDs")

	template, err := u.TemplateCell(restored)
	require.NoError(t, err)
	assert.Equal(t, inv, template)

	got, err := u.InstanceTransform(restored)
	require.NoError(t, err)
	assert.Equal(t, tf, got)

	pi, err := u.PinInstAt(restored, 0)
	require.NoError(t, err)
	netID, err := u.NetOfPinInst(pi)
	require.NoError(t, err)
	assert.Equal(t, a, netID)
	pi, err = u.PinInstAt(restored, 1)
	require.NoError(t, err)
	netID, err = u.NetOfPinInst(pi)
	require.NoError(t, err)
	assert.Equal(t, mid, netID)
}

func TestUndoRemoveNetRestoresTerminals(t *testing.T) {
	t.Parallel()
	c := NewChip()
	buf, _ := newBuffer(t, c)
	u := NewUndoStack(c)

	mid, ok := u.NetByName(buf, "mid")
	require.True(t, ok)
	require.NoError(t, u.RemoveNet(mid))

	require.NoError(t, u.Undo())

	restored, ok := u.NetByName(buf, "mid")
	require.True(t, ok)
	n, err := u.NumTerminals(restored)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUndoRemoveShapeRestoresLinks(t *testing.T) {
	t.Parallel()
	c := NewChip()
	inv := newInverter(t, c)
	m1 := c.CreateLayer(1, 0)
	pinA, ok := c.PinByName(inv, "A")
	require.True(t, ok)
	net, err := c.CreateNet(inv, "n")
	require.NoError(t, err)

	u := NewUndoStack(c)
	shape, err := u.InsertShape(inv, m1, RectOf(0, 0, 4, 4))
	require.NoError(t, err)
	_, err = u.SetShapeNet(shape, net)
	require.NoError(t, err)
	_, err = u.SetShapePin(shape, pinA)
	require.NoError(t, err)
	u.Clear()

	_, err = u.RemoveShape(shape)
	require.NoError(t, err)
	require.NoError(t, u.Undo())

	shapes, err := u.Shapes(inv, m1)
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	g, err := u.ShapeGeometry(shapes[0])
	require.NoError(t, err)
	assert.Equal(t, Geometry(RectOf(0, 0, 4, 4)), g)

	netID, err := u.ShapeNet(shapes[0])
	require.NoError(t, err)
	assert.Equal(t, net, netID)
	pinID, err := u.ShapePin(shapes[0])
	require.NoError(t, err)
	assert.Equal(t, pinA, pinID)
}

func TestUndoRemoveCellFails(t *testing.T) {
	t.Parallel()
	u := NewUndoStack(NewChip())
	cell, err := u.CreateCell("A")
	require.NoError(t, err)
	u.Clear()

	require.NoError(t, u.RemoveCell(cell))
	assert.Equal(t, 1, u.Len())
	assert.ErrorIs(t, u.Undo(), ErrCannotUndo)
}

func TestUndoAllStopsAtFirstFailure(t *testing.T) {
	t.Parallel()
	u := NewUndoStack(NewChip())

	a, err := u.CreateCell("A")
	require.NoError(t, err)
	require.NoError(t, u.RemoveCell(a))
	_, err = u.CreateCell("B")
	require.NoError(t, err)
	require.Equal(t, 3, u.Len())

	err = u.UndoAll()
	assert.ErrorIs(t, err, ErrCannotUndo)
	assert.Equal(t, 1, u.Len(), "operations before the failure stay on the stack")
	assert.Zero(t, u.NumCells(), "the create after it was undone")
}
