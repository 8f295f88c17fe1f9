package libredadb

import (
	"fmt"
	"testing"
)

// benchChip builds a grid of standard-cell rows: one leaf cell with a
// few shapes, placed many times in a top cell with chained nets.
func benchChip(b *testing.B, rows, cols int) (*Chip, CellID, LayerID) {
	b.Helper()
	c := NewChip()
	m1 := c.CreateLayer(1, 0)

	leaf, err := c.CreateCell("LEAF")
	if err != nil {
		b.Fatal(err)
	}
	if _, err := c.CreatePin(leaf, "A", DirectionInput); err != nil {
		b.Fatal(err)
	}
	if _, err := c.CreatePin(leaf, "Y", DirectionOutput); err != nil {
		b.Fatal(err)
	}
	if _, err := c.InsertShape(leaf, m1, RectOf(0, 0, 100, 100)); err != nil {
		b.Fatal(err)
	}

	top, err := c.CreateCell("TOP")
	if err != nil {
		b.Fatal(err)
	}
	for r := 0; r < rows; r++ {
		var prev NetID
		for col := 0; col < cols; col++ {
			inst, err := c.CreateInstance(top, leaf, fmt.Sprintf("u_%d_%d", r, col))
			if err != nil {
				b.Fatal(err)
			}
			if _, err := c.SetInstanceTransform(inst,
				Translation(Pt(int64(col)*120, int64(r)*120))); err != nil {
				b.Fatal(err)
			}
			net, err := c.CreateNet(top, fmt.Sprintf("n_%d_%d", r, col))
			if err != nil {
				b.Fatal(err)
			}
			if prev != 0 {
				pi, err := c.PinInstAt(inst, 0)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := c.ConnectPinInst(pi, prev); err != nil {
					b.Fatal(err)
				}
			}
			pi, err := c.PinInstAt(inst, 1)
			if err != nil {
				b.Fatal(err)
			}
			if _, err := c.ConnectPinInst(pi, net); err != nil {
				b.Fatal(err)
			}
			prev = net
		}
	}
	return c, top, m1
}

func BenchmarkChipHash(b *testing.B) {
	c, _, _ := benchChip(b, 10, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.ChipHash()
	}
}

func BenchmarkBoundingBox(b *testing.B) {
	c, top, _ := benchChip(b, 10, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := c.BoundingBox(top); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRegionSearchBuild(b *testing.B) {
	c, _, _ := benchChip(b, 10, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NewRegionSearch(c)
	}
}

func BenchmarkInstancesInRegion(b *testing.B) {
	c, top, _ := benchChip(b, 10, 100)
	rs := NewRegionSearch(c)
	query := RectOf(0, 0, 600, 600)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := rs.InstancesInRegion(top, query); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFlattenInstance(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		c, top, _ := benchChip(b, 1, 50)
		mid, err := c.CreateCell("MID")
		if err != nil {
			b.Fatal(err)
		}
		inst, err := c.CreateInstance(mid, top, "t1")
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		if err := c.FlattenInstance(inst); err != nil {
			b.Fatal(err)
		}
	}
}
