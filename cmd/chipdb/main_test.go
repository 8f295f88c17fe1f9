package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))

	err := validateFormat("yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json or text")
}

func TestFormatStatsText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	formatStatsText(&buf, CLIStats{
		DBU: 1000, Cells: 3, TopCells: 1, Layers: 2,
		Nets: 7, Pins: 4, Instances: 2, Shapes: 5,
		ContentHash: "00000000deadbeef",
	})
	out := buf.String()
	assert.Contains(t, out, "DBU: 1000 units/um")
	assert.Contains(t, out, "Cells: 3 (1 top)")
	assert.Contains(t, out, "Content hash: 00000000deadbeef")
}

func TestFormatCellsText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	formatCellsText(&buf, []CLICell{
		{Name: "TOP", Pins: 2, Nets: 5, Instances: 2, IsTop: true},
		{Name: "INV", Pins: 2, Nets: 2, References: 2, IsLeaf: true},
	})
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "top")
	assert.Contains(t, lines[2], "leaf")
}

func TestFormatCellDetailText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	formatCellDetailText(&buf, CLICellDetail{
		Name: "BUF",
		BBox: &CLIBox{X1: 0, Y1: 0, X2: 40, Y2: 20},
		Pins: []CLIPin{{Name: "A", Direction: "input", Net: "a"}},
		Nets: []string{"a", "mid", "y"},
		Instances: []CLIInstance{
			{Name: "u1", Template: "INV", X: 0, Y: 0},
			{Name: "u2", Template: "INV", X: 20, Y: 0, Rotation: 2, Mirror: true},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "Cell: BUF")
	assert.Contains(t, out, "BBox: (0, 0) .. (40, 20)")
	assert.Contains(t, out, "a, mid, y")
	assert.Contains(t, out, "(20, 0) r180 mirrored")
}

func TestFormatTerminalsText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	formatTerminalsText(&buf, []CLITerminal{
		{Kind: "pin", Pin: "A"},
		{Kind: "pin_instance", Instance: "u1", Pin: "Y"},
	})
	out := buf.String()
	assert.Contains(t, out, "pin_instance")
	assert.Contains(t, out, "u1")
}

func TestFormatShapesText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	formatShapesText(&buf, []CLIShape{
		{ID: 3, Kind: "rect", BBox: CLIBox{X1: 0, Y1: 0, X2: 10, Y2: 10}, Net: "a", Pin: "A"},
	})
	out := buf.String()
	assert.Contains(t, out, "rect")
	assert.Contains(t, out, "(0, 0)..(10, 10)")
}
