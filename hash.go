package libredadb

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Content hashing for change detection. Hashes depend on names,
// connectivity and geometry but not on ID values, so a save/load
// roundtrip that renumbers IDs keeps the same hash.

func hashString(d *xxhash.Digest, s string) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
	d.Write(buf[:])
	d.WriteString(s)
}

func hashInt(d *xxhash.Digest, v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	d.Write(buf[:])
}

func hashPoints(d *xxhash.Digest, pts []Point) {
	hashInt(d, int64(len(pts)))
	for _, p := range pts {
		hashInt(d, p.X)
		hashInt(d, p.Y)
	}
}

func hashGeometry(d *xxhash.Digest, g Geometry) {
	hashString(d, g.GeometryKind())
	switch s := g.(type) {
	case Rect:
		hashPoints(d, []Point{s.Min, s.Max})
	case SimplePolygon:
		hashPoints(d, s.Normalized().Points)
	case Path:
		hashPoints(d, s.Points)
		hashInt(d, s.Width)
	case Text:
		hashPoints(d, []Point{s.Position})
		hashString(d, s.Text)
	case Point:
		hashPoints(d, []Point{s})
	}
}

func hashTransform(d *xxhash.Digest, tf Transform) {
	if tf.Mirror {
		hashInt(d, 1)
	} else {
		hashInt(d, 0)
	}
	hashInt(d, int64(tf.Rotation))
	hashInt(d, tf.Magnification)
	hashInt(d, tf.Displacement.X)
	hashInt(d, tf.Displacement.Y)
}

// CellInterfaceHash digests the externally visible interface of a cell:
// its name plus the name and direction of each pin in order. Two cells
// with equal interface hashes are interchangeable as templates.
func (c *Chip) CellInterfaceHash(cell CellID) (uint64, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, fmt.Errorf("interface hash: %w", err)
	}
	d := xxhash.New()
	hashString(d, circ.name)
	hashInt(d, int64(len(circ.pins)))
	for _, pinID := range circ.pins {
		p := c.pins[pinID]
		hashString(d, p.name)
		hashInt(d, int64(p.direction))
	}
	return d.Sum64(), nil
}

// CellContentHash digests the full contents of a cell: its interface,
// its child instances (template interface, name, placement), its nets
// with their terminal lists, and its shapes with net and pin tags. Child
// cell contents are not included; use ChipHash for a deep digest.
func (c *Chip) CellContentHash(cell CellID) (uint64, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, fmt.Errorf("content hash: %w", err)
	}
	d := xxhash.New()

	iface, _ := c.CellInterfaceHash(cell)
	hashInt(d, int64(iface))

	// Instances, keyed by a stable per-instance digest.
	instDigests := make([]uint64, 0, len(circ.instances))
	for instID := range circ.instances {
		inst := c.instances[instID]
		id := xxhash.New()
		hashString(id, inst.name)
		tmplIface, _ := c.CellInterfaceHash(inst.template)
		hashInt(id, int64(tmplIface))
		hashTransform(id, inst.transform)
		instDigests = append(instDigests, id.Sum64())
	}
	sort.Slice(instDigests, func(i, j int) bool { return instDigests[i] < instDigests[j] })
	hashInt(d, int64(len(instDigests)))
	for _, v := range instDigests {
		hashInt(d, int64(v))
	}

	// Nets with their terminals. Terminals are named by pin name and,
	// for pin instances, the owning instance name.
	netDigests := make([]uint64, 0, len(circ.nets))
	for netID := range circ.nets {
		n := c.nets[netID]
		nd := xxhash.New()
		hashString(nd, n.name)
		switch netID {
		case circ.netLow:
			hashString(nd, "$low")
		case circ.netHigh:
			hashString(nd, "$high")
		}
		var terms []string
		for pinID := range n.pins {
			terms = append(terms, "p:"+c.pins[pinID].name)
		}
		for piID := range n.pinInsts {
			pi := c.pinInsts[piID]
			terms = append(terms,
				"i:"+c.instances[pi.inst].name+"/"+c.pins[pi.pin].name)
		}
		sort.Strings(terms)
		hashInt(nd, int64(len(terms)))
		for _, t := range terms {
			hashString(nd, t)
		}
		netDigests = append(netDigests, nd.Sum64())
	}
	sort.Slice(netDigests, func(i, j int) bool { return netDigests[i] < netDigests[j] })
	hashInt(d, int64(len(netDigests)))
	for _, v := range netDigests {
		hashInt(d, int64(v))
	}

	// Shapes per layer, tagged with their net and pin names.
	shapeDigests := make([]uint64, 0)
	for layer, layerShapes := range circ.shapes {
		info := c.layerInfo[layer]
		for shapeID, g := range layerShapes {
			sd := xxhash.New()
			hashInt(sd, int64(info.Index))
			hashInt(sd, int64(info.Datatype))
			hashGeometry(sd, g)
			if netID := c.shapeNets[shapeID]; netID != 0 {
				hashString(sd, "n:"+c.nets[netID].name)
			}
			if pinID := c.shapePins[shapeID]; pinID != 0 {
				hashString(sd, "p:"+c.pins[pinID].name)
			}
			shapeDigests = append(shapeDigests, sd.Sum64())
		}
	}
	sort.Slice(shapeDigests, func(i, j int) bool { return shapeDigests[i] < shapeDigests[j] })
	hashInt(d, int64(len(shapeDigests)))
	for _, v := range shapeDigests {
		hashInt(d, int64(v))
	}

	return d.Sum64(), nil
}

// ChipHash digests the whole database: database unit, layer table and
// the content hash of every cell, processed bottom-up so child changes
// propagate into parents through instance interfaces.
func (c *Chip) ChipHash() uint64 {
	d := xxhash.New()
	hashInt(d, c.dbu)

	layers := c.Layers()
	hashInt(d, int64(len(layers)))
	for _, layer := range layers {
		info := c.layerInfo[layer]
		hashInt(d, int64(info.Index))
		hashInt(d, int64(info.Datatype))
		hashString(d, info.Name)
	}

	for _, cell := range c.CellsBottomUp() {
		h, _ := c.CellContentHash(cell)
		hashInt(d, int64(h))
	}
	return d.Sum64()
}
