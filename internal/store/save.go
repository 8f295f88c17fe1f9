package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	libredadb "github.com/pbonh/libreda-db"
)

// Save replaces the stored database with the full contents of the chip,
// inside one transaction. The in-memory IDs are written as row IDs but
// carry no meaning beyond this file; Load assigns fresh ones.
func (s *Store) Save(c *libredadb.Chip) error {
	start := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := saveMeta(tx, c); err != nil {
		return err
	}
	if err := saveLayers(tx, c); err != nil {
		return err
	}
	if err := saveCells(tx, c); err != nil {
		return err
	}
	if err := saveProperties(tx, c); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info().
		Int("cells", c.NumCells()).
		Dur("elapsed", time.Since(start)).
		Msg("chip saved")
	return nil
}

func saveMeta(tx *sql.Tx, c *libredadb.Chip) error {
	rows := [][2]string{
		{"dbu", strconv.FormatInt(c.DBU(), 10)},
		{"content_hash", fmt.Sprintf("%016x", c.ChipHash())},
	}
	for _, kv := range rows {
		if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", kv[0], kv[1]); err != nil {
			return fmt.Errorf("save meta %s: %w", kv[0], err)
		}
	}
	return nil
}

func saveLayers(tx *sql.Tx, c *libredadb.Chip) error {
	for _, layer := range c.Layers() {
		info, err := c.Layer(layer)
		if err != nil {
			return fmt.Errorf("save layer: %w", err)
		}
		if _, err := tx.Exec(
			"INSERT INTO layers (id, idx, datatype, name) VALUES (?, ?, ?, ?)",
			int64(layer), info.Index, info.Datatype, info.Name,
		); err != nil {
			return fmt.Errorf("save layer %d/%d: %w", info.Index, info.Datatype, err)
		}
	}
	return nil
}

func saveCells(tx *sql.Tx, c *libredadb.Chip) error {
	for _, cell := range c.Cells() {
		name, err := c.CellName(cell)
		if err != nil {
			return fmt.Errorf("save cell: %w", err)
		}
		if _, err := tx.Exec("INSERT INTO cells (id, name) VALUES (?, ?)",
			int64(cell), name); err != nil {
			return fmt.Errorf("save cell %q: %w", name, err)
		}
		if err := saveNets(tx, c, cell); err != nil {
			return fmt.Errorf("cell %q: %w", name, err)
		}
		if err := savePins(tx, c, cell); err != nil {
			return fmt.Errorf("cell %q: %w", name, err)
		}
		if err := saveInstances(tx, c, cell); err != nil {
			return fmt.Errorf("cell %q: %w", name, err)
		}
		if err := saveShapes(tx, c, cell); err != nil {
			return fmt.Errorf("cell %q: %w", name, err)
		}
	}
	return nil
}

func saveNets(tx *sql.Tx, c *libredadb.Chip, cell libredadb.CellID) error {
	low, _ := c.NetZero(cell)
	high, _ := c.NetOne(cell)
	nets, err := c.Nets(cell)
	if err != nil {
		return err
	}
	for _, netID := range nets {
		name, _ := c.NetName(netID)
		kind := "plain"
		switch netID {
		case low:
			kind = "low"
		case high:
			kind = "high"
		}
		if _, err := tx.Exec(
			"INSERT INTO nets (id, cell_id, name, kind) VALUES (?, ?, ?, ?)",
			int64(netID), int64(cell), name, kind,
		); err != nil {
			return fmt.Errorf("save net %q: %w", name, err)
		}
	}
	return nil
}

func savePins(tx *sql.Tx, c *libredadb.Chip, cell libredadb.CellID) error {
	pins, err := c.Pins(cell)
	if err != nil {
		return err
	}
	for ordinal, pinID := range pins {
		name, _ := c.PinName(pinID)
		dir, _ := c.PinDirection(pinID)
		netID, _ := c.NetOfPin(pinID)
		var netArg any
		if netID != 0 {
			netArg = int64(netID)
		}
		if _, err := tx.Exec(
			"INSERT INTO pins (id, cell_id, name, direction, ordinal, net_id) VALUES (?, ?, ?, ?, ?, ?)",
			int64(pinID), int64(cell), name, dir.String(), ordinal, netArg,
		); err != nil {
			return fmt.Errorf("save pin %q: %w", name, err)
		}
	}
	return nil
}

func saveInstances(tx *sql.Tx, c *libredadb.Chip, cell libredadb.CellID) error {
	instances, err := c.Instances(cell)
	if err != nil {
		return err
	}
	for _, instID := range instances {
		name, _ := c.InstanceName(instID)
		template, _ := c.TemplateCell(instID)
		tf, _ := c.InstanceTransform(instID)
		if _, err := tx.Exec(
			`INSERT INTO instances (id, parent_id, template_id, name, mirror, rotation, magnification, dx, dy)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			int64(instID), int64(cell), int64(template), name,
			tf.Mirror, tf.Rotation, tf.Magnification, tf.Displacement.X, tf.Displacement.Y,
		); err != nil {
			return fmt.Errorf("save instance %q: %w", name, err)
		}
		pinInsts, _ := c.PinInstances(instID)
		for ordinal, pi := range pinInsts {
			netID, _ := c.NetOfPinInst(pi)
			if netID == 0 {
				continue
			}
			if _, err := tx.Exec(
				"INSERT INTO pin_connections (instance_id, ordinal, net_id) VALUES (?, ?, ?)",
				int64(instID), ordinal, int64(netID),
			); err != nil {
				return fmt.Errorf("save connection of %q: %w", name, err)
			}
		}
	}
	return nil
}

func saveShapes(tx *sql.Tx, c *libredadb.Chip, cell libredadb.CellID) error {
	for _, layer := range c.Layers() {
		shapes, err := c.Shapes(cell, layer)
		if err != nil {
			return err
		}
		for _, shapeID := range shapes {
			g, err := c.ShapeGeometry(shapeID)
			if err != nil {
				return err
			}
			data, err := libredadb.MarshalGeometry(g)
			if err != nil {
				return fmt.Errorf("encode shape %d: %w", shapeID, err)
			}
			netID, _ := c.ShapeNet(shapeID)
			pinID, _ := c.ShapePin(shapeID)
			var netArg, pinArg any
			if netID != 0 {
				netArg = int64(netID)
			}
			if pinID != 0 {
				pinArg = int64(pinID)
			}
			if _, err := tx.Exec(
				"INSERT INTO shapes (id, cell_id, layer_id, geometry, net_id, pin_id) VALUES (?, ?, ?, ?, ?, ?)",
				int64(shapeID), int64(cell), int64(layer), string(data), netArg, pinArg,
			); err != nil {
				return fmt.Errorf("save shape %d: %w", shapeID, err)
			}
		}
	}
	return nil
}

func saveProperties(tx *sql.Tx, c *libredadb.Chip) error {
	insert := func(kind string, owner int64, key string, v libredadb.PropertyValue) error {
		var typ string
		var strArg, bytesArg, intArg, floatArg any
		if s, ok := v.AsString(); ok {
			typ, strArg = "string", s
		} else if b, ok := v.AsBytes(); ok {
			typ, bytesArg = "bytes", b
		} else if i, ok := v.AsInt(); ok {
			typ, intArg = "int", i
		} else if f, ok := v.AsFloat(); ok {
			typ, floatArg = "float", f
		}
		_, err := tx.Exec(
			`INSERT INTO properties (owner_kind, owner_id, key, type, string_val, bytes_val, int_val, float_val)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			kind, owner, key, typ, strArg, bytesArg, intArg, floatArg,
		)
		if err != nil {
			return fmt.Errorf("save %s property %q: %w", kind, key, err)
		}
		return nil
	}

	for _, key := range c.ChipPropertyKeys() {
		v, _ := c.ChipProperty(key)
		if err := insert("chip", 0, key, v); err != nil {
			return err
		}
	}
	for _, cell := range c.Cells() {
		keys, _ := c.CellPropertyKeys(cell)
		for _, key := range keys {
			v, _, _ := c.CellProperty(cell, key)
			if err := insert("cell", int64(cell), key, v); err != nil {
				return err
			}
		}
		instances, _ := c.Instances(cell)
		for _, instID := range instances {
			keys, _ := c.InstancePropertyKeys(instID)
			for _, key := range keys {
				v, _, _ := c.InstanceProperty(instID, key)
				if err := insert("instance", int64(instID), key, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
