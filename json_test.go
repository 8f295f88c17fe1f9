package libredadb

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestChip builds a chip with hierarchy, layout and properties for
// interchange tests.
func newTestChip(t *testing.T) *Chip {
	t.Helper()
	c := NewChip()
	c.SetDBU(2000)
	c.SetChipProperty("process", StringProperty("sky130"))

	buf, inv := newBuffer(t, c)

	m1 := c.CreateLayer(1, 0)
	_, err := c.SetLayerName(m1, "metal1")
	require.NoError(t, err)
	poly := c.CreateLayer(2, 0)

	pinA, _ := c.PinByName(inv, "A")
	netA, err := c.CreateNet(inv, "a")
	require.NoError(t, err)
	_, err = c.ConnectPin(pinA, netA)
	require.NoError(t, err)

	s1, err := c.InsertShape(inv, m1, RectOf(0, 0, 10, 10))
	require.NoError(t, err)
	_, err = c.SetShapeNet(s1, netA)
	require.NoError(t, err)
	_, err = c.SetShapePin(s1, pinA)
	require.NoError(t, err)
	_, err = c.InsertShape(inv, poly, PolygonOf(Pt(0, 0), Pt(20, 0), Pt(0, 20)))
	require.NoError(t, err)
	_, err = c.InsertShape(inv, poly, PathOf(4, Pt(0, 0), Pt(50, 0)))
	require.NoError(t, err)
	_, err = c.InsertShape(inv, poly, TextAt(Pt(1, 1), "VDD"))
	require.NoError(t, err)

	u1, _ := c.InstanceByName(buf, "u1")
	_, err = c.SetInstanceTransform(u1, Transform{
		Mirror: true, Rotation: 1, Magnification: 1, Displacement: Pt(40, 0),
	})
	require.NoError(t, err)
	require.NoError(t, c.SetCellProperty(inv, "height", IntProperty(2720)))
	require.NoError(t, c.SetInstanceProperty(u1, "dont_touch", IntProperty(1)))
	return c
}

func TestJSONRoundtrip(t *testing.T) {
	t.Parallel()
	c := newTestChip(t)

	var buf bytes.Buffer
	require.NoError(t, c.ExportJSON(&buf))

	loaded, err := ImportJSON(&buf)
	require.NoError(t, err)

	assert.Equal(t, c.ChipHash(), loaded.ChipHash(),
		"the roundtrip preserves the content hash")
	assert.Equal(t, c.DBU(), loaded.DBU())
	assert.Equal(t, c.NumCells(), loaded.NumCells())

	v, ok := loaded.ChipProperty("process")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "sky130", s)

	m1, ok := loaded.LayerByName("metal1")
	require.True(t, ok)
	info, err := loaded.Layer(m1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), info.Index)

	bufCell, ok := loaded.CellByName("BUF")
	require.True(t, ok)
	u1, ok := loaded.InstanceByName(bufCell, "u1")
	require.True(t, ok)
	tf, err := loaded.InstanceTransform(u1)
	require.NoError(t, err)
	assert.True(t, tf.Mirror)
	assert.Equal(t, Pt(40, 0), tf.Displacement)

	mid, ok := loaded.NetByName(bufCell, "mid")
	require.True(t, ok)
	n, err := loaded.NumTerminals(mid)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestJSONRoundtripKeepsAnonymousObjects(t *testing.T) {
	t.Parallel()
	c := NewChip()
	inv := newInverter(t, c)
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

	var buf bytes.Buffer
	require.NoError(t, c.ExportJSON(&buf))
	loaded, err := ImportJSON(&buf)
	require.NoError(t, err)

	// Document labels never leak back as real names.
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

func TestJSONRoundtripConstantNets(t *testing.T) {
	t.Parallel()
	c := NewChip()
	inv := newInverter(t, c)
	top, err := c.CreateCell("TOP")
	require.NoError(t, err)
	inst, err := c.CreateInstance(top, inv, "u1")
	require.NoError(t, err)
	low, err := c.NetZero(top)
	require.NoError(t, err)
	pi, err := c.PinInstAt(inst, 0)
	require.NoError(t, err)
	_, err = c.ConnectPinInst(pi, low)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.ExportJSON(&buf))
	loaded, err := ImportJSON(&buf)
	require.NoError(t, err)

	topCell, ok := loaded.CellByName("TOP")
	require.True(t, ok)
	u1, ok := loaded.InstanceByName(topCell, "u1")
	require.True(t, ok)
	pi, err = loaded.PinInstAt(u1, 0)
	require.NoError(t, err)
	netID, err := loaded.NetOfPinInst(pi)
	require.NoError(t, err)
	wantLow, err := loaded.NetZero(topCell)
	require.NoError(t, err)
	assert.Equal(t, wantLow, netID, "tie-downs land on the constant LOW net")
}

func TestImportJSONRejectsGarbage(t *testing.T) {
	t.Parallel()
	_, err := ImportJSON(strings.NewReader("not json"))
	assert.Error(t, err)

	_, err = ImportJSON(strings.NewReader(
		`{"dbu":1000,"cells":[{"name":"A","shapes":[{"layer":[1,0],"geometry":{"kind":"blob"}}]}]}`))
	assert.ErrorContains(t, err, "unknown geometry kind")

	// Instances must name an already defined template.
	_, err = ImportJSON(strings.NewReader(
		`{"dbu":1000,"cells":[{"name":"A","instances":[{"name":"x","template":"MISSING","transform":{"displacement":[0,0]},"nets":[]}]}]}`))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarshalGeometryRoundtrip(t *testing.T) {
	t.Parallel()
	geometries := []Geometry{
		RectOf(0, 0, 10, 10),
		PolygonOf(Pt(0, 0), Pt(4, 0), Pt(0, 4)),
		PathOf(2, Pt(0, 0), Pt(10, 0), Pt(10, 10)),
		TextAt(Pt(3, 4), "VDD"),
		Pt(7, 8),
	}
	for _, g := range geometries {
		data, err := MarshalGeometry(g)
		require.NoError(t, err)
		got, err := UnmarshalGeometry(data)
		require.NoError(t, err)
		assert.Equal(t, g, got)
	}
}
