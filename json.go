package libredadb

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// JSON interchange format. Cells are written bottom-up so a reader can
// create templates before the instances that use them. Objects are
// referenced by name; anonymous nets and instances get document-local
// labels starting with '$', which are never turned back into names on
// import. The constant nets use the reserved labels "$low" and "$high".

const (
	labelLow  = "$low"
	labelHigh = "$high"
)

type jsonPoint [2]Coord

type jsonGeometry struct {
	Kind   string      `json:"kind"`
	Points []jsonPoint `json:"points,omitempty"`
	Width  Coord       `json:"width,omitempty"`
	Text   string      `json:"text,omitempty"`
}

type jsonTransform struct {
	Mirror        bool      `json:"mirror,omitempty"`
	Rotation      int       `json:"rotation,omitempty"`
	Magnification Coord     `json:"magnification,omitempty"`
	Displacement  jsonPoint `json:"displacement"`
}

type jsonProperty struct {
	Key    string  `json:"key"`
	Type   string  `json:"type"`
	String string  `json:"string,omitempty"`
	Bytes  []byte  `json:"bytes,omitempty"`
	Int    int64   `json:"int,omitempty"`
	Float  float64 `json:"float,omitempty"`
}

type jsonLayer struct {
	Index    uint32 `json:"index"`
	Datatype uint32 `json:"datatype"`
	Name     string `json:"name,omitempty"`
}

type jsonPin struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Net       string `json:"net,omitempty"`
}

type jsonInstance struct {
	Name       string         `json:"name"`
	Template   string         `json:"template"`
	Transform  jsonTransform  `json:"transform"`
	Nets       []string       `json:"nets"`
	Properties []jsonProperty `json:"properties,omitempty"`
}

type jsonShape struct {
	Layer    [2]uint32    `json:"layer"`
	Geometry jsonGeometry `json:"geometry"`
	Net      string       `json:"net,omitempty"`
	Pin      string       `json:"pin,omitempty"`
}

type jsonCell struct {
	Name       string         `json:"name"`
	Pins       []jsonPin      `json:"pins,omitempty"`
	Nets       []string       `json:"nets,omitempty"`
	Instances  []jsonInstance `json:"instances,omitempty"`
	Shapes     []jsonShape    `json:"shapes,omitempty"`
	Properties []jsonProperty `json:"properties,omitempty"`
}

type jsonDocument struct {
	DBU        Coord          `json:"dbu"`
	Layers     []jsonLayer    `json:"layers,omitempty"`
	Cells      []jsonCell     `json:"cells"`
	Properties []jsonProperty `json:"properties,omitempty"`
}

func encodeGeometry(g Geometry) jsonGeometry {
	switch s := g.(type) {
	case Rect:
		return jsonGeometry{Kind: "rect", Points: []jsonPoint{
			{s.Min.X, s.Min.Y}, {s.Max.X, s.Max.Y}}}
	case SimplePolygon:
		return jsonGeometry{Kind: "polygon", Points: encodePoints(s.Points)}
	case Path:
		return jsonGeometry{Kind: "path", Points: encodePoints(s.Points), Width: s.Width}
	case Text:
		return jsonGeometry{Kind: "text",
			Points: []jsonPoint{{s.Position.X, s.Position.Y}}, Text: s.Text}
	case Point:
		return jsonGeometry{Kind: "point", Points: []jsonPoint{{s.X, s.Y}}}
	}
	return jsonGeometry{Kind: g.GeometryKind()}
}

func decodeGeometry(jg jsonGeometry) (Geometry, error) {
	switch jg.Kind {
	case "rect":
		if len(jg.Points) != 2 {
			return nil, fmt.Errorf("rect needs 2 points, got %d", len(jg.Points))
		}
		return RectOf(jg.Points[0][0], jg.Points[0][1], jg.Points[1][0], jg.Points[1][1]), nil
	case "polygon":
		return SimplePolygon{Points: decodePoints(jg.Points)}, nil
	case "path":
		return Path{Points: decodePoints(jg.Points), Width: jg.Width}, nil
	case "text":
		if len(jg.Points) != 1 {
			return nil, fmt.Errorf("text needs 1 point, got %d", len(jg.Points))
		}
		return Text{Position: Pt(jg.Points[0][0], jg.Points[0][1]), Text: jg.Text}, nil
	case "point":
		if len(jg.Points) != 1 {
			return nil, fmt.Errorf("point needs 1 point, got %d", len(jg.Points))
		}
		return Pt(jg.Points[0][0], jg.Points[0][1]), nil
	}
	return nil, fmt.Errorf("unknown geometry kind %q", jg.Kind)
}

func encodePoints(pts []Point) []jsonPoint {
	out := make([]jsonPoint, len(pts))
	for i, p := range pts {
		out[i] = jsonPoint{p.X, p.Y}
	}
	return out
}

func decodePoints(pts []jsonPoint) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Pt(p[0], p[1])
	}
	return out
}

func encodeProperties(s *PropertyStore) []jsonProperty {
	if s.Len() == 0 {
		return nil
	}
	out := make([]jsonProperty, 0, s.Len())
	for _, key := range s.Keys() {
		v, _ := s.Get(key)
		jp := jsonProperty{Key: key}
		if str, ok := v.AsString(); ok {
			jp.Type, jp.String = "string", str
		} else if b, ok := v.AsBytes(); ok {
			jp.Type, jp.Bytes = "bytes", b
		} else if i, ok := v.AsInt(); ok {
			jp.Type, jp.Int = "int", i
		} else if f, ok := v.AsFloat(); ok {
			jp.Type, jp.Float = "float", f
		}
		out = append(out, jp)
	}
	return out
}

func decodeProperty(jp jsonProperty) (PropertyValue, error) {
	switch jp.Type {
	case "string":
		return StringProperty(jp.String), nil
	case "bytes":
		return BytesProperty(jp.Bytes), nil
	case "int":
		return IntProperty(jp.Int), nil
	case "float":
		return FloatProperty(jp.Float), nil
	}
	return PropertyValue{}, fmt.Errorf("unknown property type %q", jp.Type)
}

// MarshalGeometry encodes one geometry as a JSON value. Used by storage
// backends that keep geometry opaque.
func MarshalGeometry(g Geometry) ([]byte, error) {
	return json.Marshal(encodeGeometry(g))
}

// UnmarshalGeometry decodes a geometry produced by MarshalGeometry.
func UnmarshalGeometry(data []byte) (Geometry, error) {
	var jg jsonGeometry
	if err := json.Unmarshal(data, &jg); err != nil {
		return nil, err
	}
	return decodeGeometry(jg)
}

// netLabels assigns a document label to every net of a cell.
func (c *Chip) netLabels(circ *circuit) map[NetID]string {
	labels := make(map[NetID]string, len(circ.nets))
	labels[circ.netLow] = labelLow
	labels[circ.netHigh] = labelHigh
	ids := make([]NetID, 0, len(circ.nets))
	for id := range circ.nets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	anon := 0
	for _, id := range ids {
		if _, done := labels[id]; done {
			continue
		}
		if name := c.nets[id].name; name != "" {
			labels[id] = name
		} else {
			anon++
			labels[id] = fmt.Sprintf("$%d", anon)
		}
	}
	return labels
}

// ExportJSON writes the whole chip as an indented JSON document.
func (c *Chip) ExportJSON(w io.Writer) error {
	doc := jsonDocument{
		DBU:        c.dbu,
		Properties: encodeProperties(&c.properties),
	}

	for _, layer := range c.Layers() {
		info := c.layerInfo[layer]
		doc.Layers = append(doc.Layers, jsonLayer{
			Index: info.Index, Datatype: info.Datatype, Name: info.Name,
		})
	}

	for _, cell := range c.CellsBottomUp() {
		circ := c.circuits[cell]
		labels := c.netLabels(circ)
		jc := jsonCell{
			Name:       circ.name,
			Properties: encodeProperties(&circ.properties),
		}

		for _, pinID := range circ.pins {
			p := c.pins[pinID]
			jp := jsonPin{Name: p.name, Direction: p.direction.String()}
			if p.net != 0 {
				jp.Net = labels[p.net]
			}
			jc.Pins = append(jc.Pins, jp)
		}

		netIDs := make([]NetID, 0, len(circ.nets))
		for id := range circ.nets {
			if id != circ.netLow && id != circ.netHigh {
				netIDs = append(netIDs, id)
			}
		}
		sort.Slice(netIDs, func(i, j int) bool { return netIDs[i] < netIDs[j] })
		for _, id := range netIDs {
			jc.Nets = append(jc.Nets, labels[id])
		}

		instIDs := make([]CellInstID, 0, len(circ.instances))
		for id := range circ.instances {
			instIDs = append(instIDs, id)
		}
		sort.Slice(instIDs, func(i, j int) bool { return instIDs[i] < instIDs[j] })
		anonInst := 0
		for _, id := range instIDs {
			inst := c.instances[id]
			name := inst.name
			if name == "" {
				anonInst++
				name = fmt.Sprintf("$i%d", anonInst)
			}
			ji := jsonInstance{
				Name:     name,
				Template: c.circuits[inst.template].name,
				Transform: jsonTransform{
					Mirror:        inst.transform.Mirror,
					Rotation:      inst.transform.Rotation,
					Magnification: inst.transform.Magnification,
					Displacement: jsonPoint{
						inst.transform.Displacement.X,
						inst.transform.Displacement.Y,
					},
				},
				Nets: make([]string, len(inst.pins)),
			}
			for pos, piID := range inst.pins {
				if netID := c.pinInsts[piID].net; netID != 0 {
					ji.Nets[pos] = labels[netID]
				}
			}
			if store, ok := circ.instanceProperties[id]; ok {
				ji.Properties = encodeProperties(store)
			}
			jc.Instances = append(jc.Instances, ji)
		}

		layers := make([]LayerID, 0, len(circ.shapes))
		for layer := range circ.shapes {
			layers = append(layers, layer)
		}
		sort.Slice(layers, func(i, j int) bool { return layers[i] < layers[j] })
		for _, layer := range layers {
			info := c.layerInfo[layer]
			shapeIDs, _ := c.Shapes(cell, layer)
			for _, shapeID := range shapeIDs {
				js := jsonShape{
					Layer:    [2]uint32{info.Index, info.Datatype},
					Geometry: encodeGeometry(circ.shapes[layer][shapeID]),
				}
				if netID := c.shapeNets[shapeID]; netID != 0 {
					js.Net = labels[netID]
				}
				if pinID := c.shapePins[shapeID]; pinID != 0 {
					js.Pin = c.pins[pinID].name
				}
				jc.Shapes = append(jc.Shapes, js)
			}
		}

		doc.Cells = append(doc.Cells, jc)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ImportJSON reads a chip from the JSON document produced by ExportJSON.
// IDs are assigned fresh; names, connectivity, geometry and properties
// are restored.
func ImportJSON(r io.Reader) (*Chip, error) {
	var doc jsonDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	c := NewChip()
	if doc.DBU != 0 {
		c.SetDBU(doc.DBU)
	}
	for _, jp := range doc.Properties {
		v, err := decodeProperty(jp)
		if err != nil {
			return nil, fmt.Errorf("import: %w", err)
		}
		c.SetChipProperty(jp.Key, v)
	}

	for _, jl := range doc.Layers {
		layer := c.CreateLayer(jl.Index, jl.Datatype)
		if jl.Name != "" {
			if _, err := c.SetLayerName(layer, jl.Name); err != nil {
				return nil, fmt.Errorf("import layer: %w", err)
			}
		}
	}

	for _, jc := range doc.Cells {
		cell, err := c.CreateCell(jc.Name)
		if err != nil {
			return nil, fmt.Errorf("import cell %q: %w", jc.Name, err)
		}
		circ := c.circuits[cell]
		for _, jp := range jc.Properties {
			v, err := decodeProperty(jp)
			if err != nil {
				return nil, fmt.Errorf("import cell %q: %w", jc.Name, err)
			}
			circ.properties.Set(jp.Key, v)
		}

		nets := map[string]NetID{
			labelLow:  circ.netLow,
			labelHigh: circ.netHigh,
		}
		resolveNet := func(label string) (NetID, error) {
			if id, ok := nets[label]; ok {
				return id, nil
			}
			name := label
			if len(label) > 0 && label[0] == '$' {
				name = ""
			}
			id, err := c.CreateNet(cell, name)
			if err != nil {
				return 0, err
			}
			nets[label] = id
			return id, nil
		}
		for _, label := range jc.Nets {
			if _, err := resolveNet(label); err != nil {
				return nil, fmt.Errorf("import net %q in %q: %w", label, jc.Name, err)
			}
		}

		for _, jp := range jc.Pins {
			pinID, err := c.CreatePin(cell, jp.Name, DirectionFromString(jp.Direction))
			if err != nil {
				return nil, fmt.Errorf("import pin %q in %q: %w", jp.Name, jc.Name, err)
			}
			if jp.Net != "" {
				netID, err := resolveNet(jp.Net)
				if err != nil {
					return nil, fmt.Errorf("import pin %q in %q: %w", jp.Name, jc.Name, err)
				}
				if _, err := c.ConnectPin(pinID, netID); err != nil {
					return nil, fmt.Errorf("import pin %q in %q: %w", jp.Name, jc.Name, err)
				}
			}
		}

		for _, ji := range jc.Instances {
			template, ok := c.CellByName(ji.Template)
			if !ok {
				return nil, fmt.Errorf("import instance %q in %q: template %q: %w",
					ji.Name, jc.Name, ji.Template, ErrNotFound)
			}
			name := ji.Name
			if len(name) > 0 && name[0] == '$' {
				name = ""
			}
			instID, err := c.CreateInstance(cell, template, name)
			if err != nil {
				return nil, fmt.Errorf("import instance %q in %q: %w", ji.Name, jc.Name, err)
			}
			if _, err := c.SetInstanceTransform(instID, Transform{
				Mirror:        ji.Transform.Mirror,
				Rotation:      ji.Transform.Rotation,
				Magnification: ji.Transform.Magnification,
				Displacement:  Pt(ji.Transform.Displacement[0], ji.Transform.Displacement[1]),
			}); err != nil {
				return nil, fmt.Errorf("import instance %q in %q: %w", ji.Name, jc.Name, err)
			}
			for pos, label := range ji.Nets {
				if label == "" {
					continue
				}
				netID, err := resolveNet(label)
				if err != nil {
					return nil, fmt.Errorf("import instance %q in %q: %w", ji.Name, jc.Name, err)
				}
				pi, err := c.PinInstAt(instID, pos)
				if err != nil {
					return nil, fmt.Errorf("import instance %q in %q: %w", ji.Name, jc.Name, err)
				}
				if _, err := c.ConnectPinInst(pi, netID); err != nil {
					return nil, fmt.Errorf("import instance %q in %q: %w", ji.Name, jc.Name, err)
				}
			}
			for _, jp := range ji.Properties {
				v, err := decodeProperty(jp)
				if err != nil {
					return nil, fmt.Errorf("import instance %q in %q: %w", ji.Name, jc.Name, err)
				}
				if err := c.SetInstanceProperty(instID, jp.Key, v); err != nil {
					return nil, fmt.Errorf("import instance %q in %q: %w", ji.Name, jc.Name, err)
				}
			}
		}

		for _, js := range jc.Shapes {
			layer := c.CreateLayer(js.Layer[0], js.Layer[1])
			g, err := decodeGeometry(js.Geometry)
			if err != nil {
				return nil, fmt.Errorf("import shape in %q: %w", jc.Name, err)
			}
			shapeID, err := c.InsertShape(cell, layer, g)
			if err != nil {
				return nil, fmt.Errorf("import shape in %q: %w", jc.Name, err)
			}
			if js.Net != "" {
				netID, err := resolveNet(js.Net)
				if err != nil {
					return nil, fmt.Errorf("import shape in %q: %w", jc.Name, err)
				}
				if _, err := c.SetShapeNet(shapeID, netID); err != nil {
					return nil, fmt.Errorf("import shape in %q: %w", jc.Name, err)
				}
			}
			if js.Pin != "" {
				pinID, ok := c.PinByName(cell, js.Pin)
				if !ok {
					return nil, fmt.Errorf("import shape in %q: pin %q: %w",
						jc.Name, js.Pin, ErrNotFound)
				}
				if _, err := c.SetShapePin(shapeID, pinID); err != nil {
					return nil, fmt.Errorf("import shape in %q: %w", jc.Name, err)
				}
			}
		}
	}

	return c, nil
}
