package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libredadb "github.com/pbonh/libreda-db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestChip builds a chip exercising every persisted feature:
// hierarchy, pins, nets, constant nets, shapes, links and properties.
func newTestChip(t *testing.T) *libredadb.Chip {
	t.Helper()
	c := libredadb.NewChip()
	c.SetDBU(2000)
	c.SetChipProperty("process", libredadb.StringProperty("sky130"))

	inv, err := c.CreateCell("INV")
	require.NoError(t, err)
	pinA, err := c.CreatePin(inv, "A", libredadb.DirectionInput)
	require.NoError(t, err)
	_, err = c.CreatePin(inv, "Y", libredadb.DirectionOutput)
	require.NoError(t, err)
	netA, err := c.CreateNet(inv, "a")
	require.NoError(t, err)
	_, err = c.ConnectPin(pinA, netA)
	require.NoError(t, err)
	require.NoError(t, c.SetCellProperty(inv, "height", libredadb.IntProperty(2720)))

	m1 := c.CreateLayer(1, 0)
	_, err = c.SetLayerName(m1, "metal1")
	require.NoError(t, err)
	s1, err := c.InsertShape(inv, m1, libredadb.RectOf(0, 0, 10, 10))
	require.NoError(t, err)
	_, err = c.SetShapeNet(s1, netA)
	require.NoError(t, err)
	_, err = c.SetShapePin(s1, pinA)
	require.NoError(t, err)
	_, err = c.InsertShape(inv, m1, libredadb.PathOf(2, libredadb.Pt(0, 0), libredadb.Pt(20, 0)))
	require.NoError(t, err)

	top, err := c.CreateCell("TOP")
	require.NoError(t, err)
	u1, err := c.CreateInstance(top, inv, "u1")
	require.NoError(t, err)
	_, err = c.SetInstanceTransform(u1, libredadb.Transform{
		Mirror: true, Rotation: 1, Magnification: 1,
		Displacement: libredadb.Pt(40, 0),
	})
	require.NoError(t, err)
	require.NoError(t, c.SetInstanceProperty(u1, "dont_touch", libredadb.IntProperty(1)))

	// Tie the instance input to the constant LOW net.
	low, err := c.NetZero(top)
	require.NoError(t, err)
	pi, err := c.PinInstAt(u1, 0)
	require.NoError(t, err)
	_, err = c.ConnectPinInst(pi, low)
	require.NoError(t, err)

	return c
}

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	expectedTables := []string{
		"meta", "layers", "cells", "nets", "pins",
		"instances", "pin_connections", "shapes", "properties",
	}
	for _, table := range expectedTables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestMigrate_WALMode(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var mode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	c := newTestChip(t)

	require.NoError(t, s.Save(c))

	loaded, err := s.Load()
	require.NoError(t, err)

	assert.Equal(t, c.ChipHash(), loaded.ChipHash(),
		"the roundtrip preserves the content hash")
	assert.Equal(t, int64(2000), loaded.DBU())
	assert.Equal(t, 2, loaded.NumCells())

	v, ok := loaded.ChipProperty("process")
	require.True(t, ok)
	str, _ := v.AsString()
	assert.Equal(t, "sky130", str)

	m1, ok := loaded.LayerByName("metal1")
	require.True(t, ok)
	info, err := loaded.Layer(m1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), info.Index)

	inv, ok := loaded.CellByName("INV")
	require.True(t, ok)
	n, err := loaded.NumShapes(inv, m1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// The shape-to-pin link survived.
	pinA, ok := loaded.PinByName(inv, "A")
	require.True(t, ok)
	shapes, err := loaded.ShapesOfPin(pinA)
	require.NoError(t, err)
	assert.Len(t, shapes, 1)

	top, ok := loaded.CellByName("TOP")
	require.True(t, ok)
	u1, ok := loaded.InstanceByName(top, "u1")
	require.True(t, ok)
	tf, err := loaded.InstanceTransform(u1)
	require.NoError(t, err)
	assert.True(t, tf.Mirror)
	assert.Equal(t, 1, tf.Rotation)
	assert.Equal(t, libredadb.Pt(40, 0), tf.Displacement)

	v, ok, err = loaded.InstanceProperty(u1, "dont_touch")
	require.NoError(t, err)
	require.True(t, ok)
	i, _ := v.AsInt()
	assert.Equal(t, int64(1), i)

	// The tie to the constant LOW net maps onto the implicit LOW net of
	// the rebuilt cell, not onto a fresh plain net.
	low, err := loaded.NetZero(top)
	require.NoError(t, err)
	pi, err := loaded.PinInstAt(u1, 0)
	require.NoError(t, err)
	netID, err := loaded.NetOfPinInst(pi)
	require.NoError(t, err)
	assert.Equal(t, low, netID)
	nets, err := loaded.NumNets(top)
	require.NoError(t, err)
	assert.Equal(t, 2, nets, "no extra nets appear for the constants")
}

func TestSave_ReplacesPreviousContents(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	c := newTestChip(t)
	require.NoError(t, s.Save(c))

	// Save a different chip into the same database.
	c2 := libredadb.NewChip()
	_, err := c2.CreateCell("ONLY")
	require.NoError(t, err)
	require.NoError(t, s.Save(c2))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.NumCells())
	_, ok := loaded.CellByName("INV")
	assert.False(t, ok)
}

func TestLoad_EmptyDatabase(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Zero(t, loaded.NumCells())
	assert.Equal(t, libredadb.DefaultDBU, loaded.DBU())
}

func TestStoredHash(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	hash, err := s.StoredHash()
	require.NoError(t, err)
	assert.Empty(t, hash, "a fresh database has no stored hash")

	c := newTestChip(t)
	require.NoError(t, s.Save(c))

	hash, err = s.StoredHash()
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%016x", c.ChipHash()), hash)

	// Saving after a mutation updates the hash.
	_, err = c.CreateCell("EXTRA")
	require.NoError(t, err)
	require.NoError(t, s.Save(c))
	updated, err := s.StoredHash()
	require.NoError(t, err)
	assert.NotEqual(t, hash, updated)
}

func TestSaveLoad_AnonymousObjects(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	c := libredadb.NewChip()
	inv, err := c.CreateCell("INV")
	require.NoError(t, err)
	_, err = c.CreatePin(inv, "A", libredadb.DirectionInput)
	require.NoError(t, err)
	top, err := c.CreateCell("TOP")
	require.NoError(t, err)
	inst, err := c.CreateInstance(top, inv, "")
	require.NoError(t, err)
	anon, err := c.CreateNet(top, "")
	require.NoError(t, err)
	pi, err := c.PinInstAt(inst, 0)
	require.NoError(t, err)
	_, err = c.ConnectPinInst(pi, anon)
	require.NoError(t, err)

	require.NoError(t, s.Save(c))
	loaded, err := s.Load()
	require.NoError(t, err)

	topCell, ok := loaded.CellByName("TOP")
	require.True(t, ok)
	insts, err := loaded.Instances(topCell)
	require.NoError(t, err)
	require.Len(t, insts, 1)
	name, err := loaded.InstanceName(insts[0])
	require.NoError(t, err)
	assert.Empty(t, name)

	pi, err = loaded.PinInstAt(insts[0], 0)
	require.NoError(t, err)
	netID, err := loaded.NetOfPinInst(pi)
	require.NoError(t, err)
	require.NotZero(t, netID)
	netName, err := loaded.NetName(netID)
	require.NoError(t, err)
	assert.Empty(t, netName)
}
