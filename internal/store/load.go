package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	libredadb "github.com/pbonh/libreda-db"
)

// loadMaps translates stored row IDs into the fresh IDs of the chip
// being rebuilt.
type loadMaps struct {
	layers map[int64]libredadb.LayerID
	cells  map[int64]libredadb.CellID
	nets   map[int64]libredadb.NetID
	pins   map[int64]libredadb.PinID
	insts  map[int64]libredadb.CellInstID
}

// Load rebuilds a chip from the stored database.
func (s *Store) Load() (*libredadb.Chip, error) {
	start := time.Now()
	c := libredadb.NewChip()
	m := &loadMaps{
		layers: make(map[int64]libredadb.LayerID),
		cells:  make(map[int64]libredadb.CellID),
		nets:   make(map[int64]libredadb.NetID),
		pins:   make(map[int64]libredadb.PinID),
		insts:  make(map[int64]libredadb.CellInstID),
	}

	if err := s.loadMeta(c); err != nil {
		return nil, err
	}
	if err := s.loadLayers(c, m); err != nil {
		return nil, err
	}
	if err := s.loadCells(c, m); err != nil {
		return nil, err
	}
	if err := s.loadNets(c, m); err != nil {
		return nil, err
	}
	if err := s.loadPins(c, m); err != nil {
		return nil, err
	}
	if err := s.loadInstances(c, m); err != nil {
		return nil, err
	}
	if err := s.loadConnections(c, m); err != nil {
		return nil, err
	}
	if err := s.loadShapes(c, m); err != nil {
		return nil, err
	}
	if err := s.loadProperties(c, m); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("cells", c.NumCells()).
		Dur("elapsed", time.Since(start)).
		Msg("chip loaded")
	return c, nil
}

func (s *Store) loadMeta(c *libredadb.Chip) error {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'dbu'").Scan(&value)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load meta: %w", err)
	}
	dbu, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("load meta: parse dbu %q: %w", value, err)
	}
	c.SetDBU(dbu)
	return nil
}

func (s *Store) loadLayers(c *libredadb.Chip, m *loadMaps) error {
	rows, err := s.db.Query("SELECT id, idx, datatype, name FROM layers ORDER BY id")
	if err != nil {
		return fmt.Errorf("load layers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var index, datatype uint32
		var name string
		if err := rows.Scan(&id, &index, &datatype, &name); err != nil {
			return fmt.Errorf("load layers: %w", err)
		}
		layer := c.CreateLayer(index, datatype)
		if name != "" {
			if _, err := c.SetLayerName(layer, name); err != nil {
				return fmt.Errorf("load layer %q: %w", name, err)
			}
		}
		m.layers[id] = layer
	}
	return rows.Err()
}

func (s *Store) loadCells(c *libredadb.Chip, m *loadMaps) error {
	rows, err := s.db.Query("SELECT id, name FROM cells ORDER BY id")
	if err != nil {
		return fmt.Errorf("load cells: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("load cells: %w", err)
		}
		cell, err := c.CreateCell(name)
		if err != nil {
			return fmt.Errorf("load cell %q: %w", name, err)
		}
		m.cells[id] = cell
	}
	return rows.Err()
}

func (s *Store) loadNets(c *libredadb.Chip, m *loadMaps) error {
	rows, err := s.db.Query("SELECT id, cell_id, name, kind FROM nets ORDER BY id")
	if err != nil {
		return fmt.Errorf("load nets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, cellID int64
		var name, kind string
		if err := rows.Scan(&id, &cellID, &name, &kind); err != nil {
			return fmt.Errorf("load nets: %w", err)
		}
		cell, ok := m.cells[cellID]
		if !ok {
			return fmt.Errorf("load net %q: unknown cell row %d", name, cellID)
		}
		var netID libredadb.NetID
		switch kind {
		case "low":
			netID, err = c.NetZero(cell)
		case "high":
			netID, err = c.NetOne(cell)
		default:
			netID, err = c.CreateNet(cell, name)
		}
		if err != nil {
			return fmt.Errorf("load net %q: %w", name, err)
		}
		m.nets[id] = netID
	}
	return rows.Err()
}

func (s *Store) loadPins(c *libredadb.Chip, m *loadMaps) error {
	rows, err := s.db.Query(
		"SELECT id, cell_id, name, direction, net_id FROM pins ORDER BY cell_id, ordinal")
	if err != nil {
		return fmt.Errorf("load pins: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, cellID int64
		var name, direction string
		var netID sql.NullInt64
		if err := rows.Scan(&id, &cellID, &name, &direction, &netID); err != nil {
			return fmt.Errorf("load pins: %w", err)
		}
		cell, ok := m.cells[cellID]
		if !ok {
			return fmt.Errorf("load pin %q: unknown cell row %d", name, cellID)
		}
		pinID, err := c.CreatePin(cell, name, libredadb.DirectionFromString(direction))
		if err != nil {
			return fmt.Errorf("load pin %q: %w", name, err)
		}
		if netID.Valid {
			if _, err := c.ConnectPin(pinID, m.nets[netID.Int64]); err != nil {
				return fmt.Errorf("load pin %q: %w", name, err)
			}
		}
		m.pins[id] = pinID
	}
	return rows.Err()
}

func (s *Store) loadInstances(c *libredadb.Chip, m *loadMaps) error {
	rows, err := s.db.Query(
		`SELECT id, parent_id, template_id, name, mirror, rotation, magnification, dx, dy
		 FROM instances ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load instances: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, parentID, templateID int64
		var name string
		var mirror bool
		var rotation int
		var magnification, dx, dy int64
		if err := rows.Scan(&id, &parentID, &templateID, &name,
			&mirror, &rotation, &magnification, &dx, &dy); err != nil {
			return fmt.Errorf("load instances: %w", err)
		}
		parent, ok := m.cells[parentID]
		if !ok {
			return fmt.Errorf("load instance %q: unknown cell row %d", name, parentID)
		}
		template, ok := m.cells[templateID]
		if !ok {
			return fmt.Errorf("load instance %q: unknown template row %d", name, templateID)
		}
		instID, err := c.CreateInstance(parent, template, name)
		if err != nil {
			return fmt.Errorf("load instance %q: %w", name, err)
		}
		if _, err := c.SetInstanceTransform(instID, libredadb.Transform{
			Mirror:        mirror,
			Rotation:      rotation,
			Magnification: magnification,
			Displacement:  libredadb.Pt(dx, dy),
		}); err != nil {
			return fmt.Errorf("load instance %q: %w", name, err)
		}
		m.insts[id] = instID
	}
	return rows.Err()
}

func (s *Store) loadConnections(c *libredadb.Chip, m *loadMaps) error {
	rows, err := s.db.Query("SELECT instance_id, ordinal, net_id FROM pin_connections")
	if err != nil {
		return fmt.Errorf("load connections: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var instID, netID int64
		var ordinal int
		if err := rows.Scan(&instID, &ordinal, &netID); err != nil {
			return fmt.Errorf("load connections: %w", err)
		}
		pi, err := c.PinInstAt(m.insts[instID], ordinal)
		if err != nil {
			return fmt.Errorf("load connection: %w", err)
		}
		if _, err := c.ConnectPinInst(pi, m.nets[netID]); err != nil {
			return fmt.Errorf("load connection: %w", err)
		}
	}
	return rows.Err()
}

func (s *Store) loadShapes(c *libredadb.Chip, m *loadMaps) error {
	rows, err := s.db.Query(
		"SELECT id, cell_id, layer_id, geometry, net_id, pin_id FROM shapes ORDER BY id")
	if err != nil {
		return fmt.Errorf("load shapes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, cellID, layerID int64
		var data string
		var netID, pinID sql.NullInt64
		if err := rows.Scan(&id, &cellID, &layerID, &data, &netID, &pinID); err != nil {
			return fmt.Errorf("load shapes: %w", err)
		}
		g, err := libredadb.UnmarshalGeometry([]byte(data))
		if err != nil {
			return fmt.Errorf("load shape row %d: %w", id, err)
		}
		shapeID, err := c.InsertShape(m.cells[cellID], m.layers[layerID], g)
		if err != nil {
			return fmt.Errorf("load shape row %d: %w", id, err)
		}
		if netID.Valid {
			if _, err := c.SetShapeNet(shapeID, m.nets[netID.Int64]); err != nil {
				return fmt.Errorf("load shape row %d: %w", id, err)
			}
		}
		if pinID.Valid {
			if _, err := c.SetShapePin(shapeID, m.pins[pinID.Int64]); err != nil {
				return fmt.Errorf("load shape row %d: %w", id, err)
			}
		}
	}
	return rows.Err()
}

func (s *Store) loadProperties(c *libredadb.Chip, m *loadMaps) error {
	rows, err := s.db.Query(
		`SELECT owner_kind, owner_id, key, type, string_val, bytes_val, int_val, float_val
		 FROM properties`)
	if err != nil {
		return fmt.Errorf("load properties: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind, key, typ string
		var ownerID int64
		var strVal sql.NullString
		var bytesVal []byte
		var intVal sql.NullInt64
		var floatVal sql.NullFloat64
		if err := rows.Scan(&kind, &ownerID, &key, &typ,
			&strVal, &bytesVal, &intVal, &floatVal); err != nil {
			return fmt.Errorf("load properties: %w", err)
		}
		var value libredadb.PropertyValue
		switch typ {
		case "string":
			value = libredadb.StringProperty(strVal.String)
		case "bytes":
			value = libredadb.BytesProperty(bytesVal)
		case "int":
			value = libredadb.IntProperty(intVal.Int64)
		case "float":
			value = libredadb.FloatProperty(floatVal.Float64)
		default:
			return fmt.Errorf("load property %q: unknown type %q", key, typ)
		}
		switch kind {
		case "chip":
			c.SetChipProperty(key, value)
		case "cell":
			if err := c.SetCellProperty(m.cells[ownerID], key, value); err != nil {
				return fmt.Errorf("load property %q: %w", key, err)
			}
		case "instance":
			if err := c.SetInstanceProperty(m.insts[ownerID], key, value); err != nil {
				return fmt.Errorf("load property %q: %w", key, err)
			}
		default:
			return fmt.Errorf("load property %q: unknown owner kind %q", key, kind)
		}
	}
	return rows.Err()
}
