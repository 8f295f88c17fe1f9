package libredadb

import (
	"errors"
	"fmt"
)

// ErrCannotUndo marks mutations the undo stack records but cannot
// reverse.
var ErrCannotUndo = errors.New("operation cannot be undone")

type undoOp func(c *Chip) error

// UndoStack wraps a chip and records an inverse operation for every
// mutation that goes through it. Undo applies the inverses in reverse
// order. Objects recreated by an undo get fresh IDs; names, topology
// and geometry are restored exactly.
//
// RemoveCell and RemovePin are recorded but not reversible: undoing
// past one of them fails with ErrCannotUndo.
type UndoStack struct {
	*Chip
	ops []undoOp
}

// NewUndoStack wraps a chip for undo recording.
func NewUndoStack(c *Chip) *UndoStack {
	return &UndoStack{Chip: c}
}

// Len returns the number of recorded operations.
func (u *UndoStack) Len() int { return len(u.ops) }

// Clear drops all recorded operations without applying them.
func (u *UndoStack) Clear() { u.ops = nil }

// Undo reverses the most recent recorded operation.
func (u *UndoStack) Undo() error {
	if len(u.ops) == 0 {
		return nil
	}
	op := u.ops[len(u.ops)-1]
	u.ops = u.ops[:len(u.ops)-1]
	return op(u.Chip)
}

// UndoAll reverses every recorded operation, newest first. It stops at
// the first failure, leaving the remaining operations on the stack.
func (u *UndoStack) UndoAll() error {
	for len(u.ops) > 0 {
		if err := u.Undo(); err != nil {
			return err
		}
	}
	return nil
}

func (u *UndoStack) push(op undoOp) { u.ops = append(u.ops, op) }

func (u *UndoStack) CreateCell(name string) (CellID, error) {
	id, err := u.Chip.CreateCell(name)
	if err == nil {
		u.push(func(c *Chip) error { return c.RemoveCell(id) })
	}
	return id, err
}

func (u *UndoStack) RemoveCell(cell CellID) error {
	err := u.Chip.RemoveCell(cell)
	if err == nil {
		u.push(func(c *Chip) error {
			return fmt.Errorf("undo remove cell %d: %w", cell, ErrCannotUndo)
		})
	}
	return err
}

func (u *UndoStack) RenameCell(cell CellID, name string) error {
	previous, err := u.Chip.CellName(cell)
	if err != nil {
		return err
	}
	if err := u.Chip.RenameCell(cell, name); err != nil {
		return err
	}
	u.push(func(c *Chip) error { return c.RenameCell(cell, previous) })
	return nil
}

func (u *UndoStack) CreateInstance(parent, template CellID, name string) (CellInstID, error) {
	id, err := u.Chip.CreateInstance(parent, template, name)
	if err == nil {
		u.push(func(c *Chip) error { return c.RemoveInstance(id) })
	}
	return id, err
}

func (u *UndoStack) RemoveInstance(instID CellInstID) error {
	inst, err := u.Chip.instance(instID)
	if err != nil {
		return err
	}
	parent, template, name, tf := inst.parent, inst.template, inst.name, inst.transform
	nets := make([]NetID, len(inst.pins))
	for pos, piID := range inst.pins {
		nets[pos] = u.Chip.pinInsts[piID].net
	}
	if err := u.Chip.RemoveInstance(instID); err != nil {
		return err
	}
	u.push(func(c *Chip) error {
		id, err := c.CreateInstance(parent, template, name)
		if err != nil {
			return fmt.Errorf("undo remove instance: %w", err)
		}
		for pos, netID := range nets {
			if netID == 0 {
				continue
			}
			pi, err := c.PinInstAt(id, pos)
			if err != nil {
				return fmt.Errorf("undo remove instance: %w", err)
			}
			if _, err := c.ConnectPinInst(pi, netID); err != nil {
				return fmt.Errorf("undo remove instance: %w", err)
			}
		}
		_, err = c.SetInstanceTransform(id, tf)
		return err
	})
	return nil
}

func (u *UndoStack) RenameInstance(instID CellInstID, name string) error {
	previous, err := u.Chip.InstanceName(instID)
	if err != nil {
		return err
	}
	if err := u.Chip.RenameInstance(instID, name); err != nil {
		return err
	}
	u.push(func(c *Chip) error { return c.RenameInstance(instID, previous) })
	return nil
}

func (u *UndoStack) SetInstanceTransform(instID CellInstID, tf Transform) (Transform, error) {
	previous, err := u.Chip.SetInstanceTransform(instID, tf)
	if err == nil {
		u.push(func(c *Chip) error {
			_, err := c.SetInstanceTransform(instID, previous)
			return err
		})
	}
	return previous, err
}

func (u *UndoStack) CreatePin(cell CellID, name string, dir Direction) (PinID, error) {
	id, err := u.Chip.CreatePin(cell, name, dir)
	if err == nil {
		u.push(func(c *Chip) error { return c.RemovePin(id) })
	}
	return id, err
}

func (u *UndoStack) RemovePin(pin PinID) error {
	err := u.Chip.RemovePin(pin)
	if err == nil {
		u.push(func(c *Chip) error {
			return fmt.Errorf("undo remove pin %d: %w", pin, ErrCannotUndo)
		})
	}
	return err
}

func (u *UndoStack) RenamePin(pin PinID, name string) error {
	previous, err := u.Chip.PinName(pin)
	if err != nil {
		return err
	}
	if err := u.Chip.RenamePin(pin, name); err != nil {
		return err
	}
	u.push(func(c *Chip) error { return c.RenamePin(pin, previous) })
	return nil
}

func (u *UndoStack) CreateNet(cell CellID, name string) (NetID, error) {
	id, err := u.Chip.CreateNet(cell, name)
	if err == nil {
		u.push(func(c *Chip) error { return c.RemoveNet(id) })
	}
	return id, err
}

func (u *UndoStack) RemoveNet(netID NetID) error {
	n, err := u.Chip.net(netID)
	if err != nil {
		return err
	}
	cell, name := n.parent, n.name
	pins := make([]PinID, 0, len(n.pins))
	for pinID := range n.pins {
		pins = append(pins, pinID)
	}
	pinInsts := make([]PinInstID, 0, len(n.pinInsts))
	for piID := range n.pinInsts {
		pinInsts = append(pinInsts, piID)
	}
	if err := u.Chip.RemoveNet(netID); err != nil {
		return err
	}
	u.push(func(c *Chip) error {
		id, err := c.CreateNet(cell, name)
		if err != nil {
			return fmt.Errorf("undo remove net: %w", err)
		}
		for _, pinID := range pins {
			if _, err := c.ConnectPin(pinID, id); err != nil {
				return fmt.Errorf("undo remove net: %w", err)
			}
		}
		for _, piID := range pinInsts {
			if _, err := c.ConnectPinInst(piID, id); err != nil {
				return fmt.Errorf("undo remove net: %w", err)
			}
		}
		return nil
	})
	return nil
}

func (u *UndoStack) RenameNet(netID NetID, name string) error {
	previous, err := u.Chip.NetName(netID)
	if err != nil {
		return err
	}
	if err := u.Chip.RenameNet(netID, name); err != nil {
		return err
	}
	u.push(func(c *Chip) error { return c.RenameNet(netID, previous) })
	return nil
}

func (u *UndoStack) ConnectPin(pin PinID, netID NetID) (NetID, error) {
	previous, err := u.Chip.ConnectPin(pin, netID)
	if err == nil {
		u.push(func(c *Chip) error { return restorePinNet(c, pin, previous) })
	}
	return previous, err
}

func (u *UndoStack) DisconnectPin(pin PinID) (NetID, error) {
	previous, err := u.Chip.DisconnectPin(pin)
	if err == nil {
		u.push(func(c *Chip) error { return restorePinNet(c, pin, previous) })
	}
	return previous, err
}

func (u *UndoStack) ConnectPinInst(pinInst PinInstID, netID NetID) (NetID, error) {
	previous, err := u.Chip.ConnectPinInst(pinInst, netID)
	if err == nil {
		u.push(func(c *Chip) error { return restorePinInstNet(c, pinInst, previous) })
	}
	return previous, err
}

func (u *UndoStack) DisconnectPinInst(pinInst PinInstID) (NetID, error) {
	previous, err := u.Chip.DisconnectPinInst(pinInst)
	if err == nil {
		u.push(func(c *Chip) error { return restorePinInstNet(c, pinInst, previous) })
	}
	return previous, err
}

func restorePinNet(c *Chip, pin PinID, netID NetID) error {
	var err error
	if netID == 0 {
		_, err = c.DisconnectPin(pin)
	} else {
		_, err = c.ConnectPin(pin, netID)
	}
	return err
}

func restorePinInstNet(c *Chip, pinInst PinInstID, netID NetID) error {
	var err error
	if netID == 0 {
		_, err = c.DisconnectPinInst(pinInst)
	} else {
		_, err = c.ConnectPinInst(pinInst, netID)
	}
	return err
}

func (u *UndoStack) InsertShape(cell CellID, layer LayerID, g Geometry) (ShapeID, error) {
	id, err := u.Chip.InsertShape(cell, layer, g)
	if err == nil {
		u.push(func(c *Chip) error {
			_, err := c.RemoveShape(id)
			return err
		})
	}
	return id, err
}

func (u *UndoStack) RemoveShape(shape ShapeID) (Geometry, error) {
	cell, layer, err := u.Chip.ShapeHome(shape)
	if err != nil {
		return nil, err
	}
	netID := u.Chip.shapeNets[shape]
	pinID := u.Chip.shapePins[shape]
	g, err := u.Chip.RemoveShape(shape)
	if err != nil {
		return nil, err
	}
	u.push(func(c *Chip) error {
		id, err := c.InsertShape(cell, layer, g)
		if err != nil {
			return fmt.Errorf("undo remove shape: %w", err)
		}
		if netID != 0 {
			if _, err := c.SetShapeNet(id, netID); err != nil {
				return fmt.Errorf("undo remove shape: %w", err)
			}
		}
		if pinID != 0 {
			if _, err := c.SetShapePin(id, pinID); err != nil {
				return fmt.Errorf("undo remove shape: %w", err)
			}
		}
		return nil
	})
	return g, nil
}

func (u *UndoStack) ReplaceShape(shape ShapeID, g Geometry) (Geometry, error) {
	previous, err := u.Chip.ReplaceShape(shape, g)
	if err == nil {
		u.push(func(c *Chip) error {
			_, err := c.ReplaceShape(shape, previous)
			return err
		})
	}
	return previous, err
}

func (u *UndoStack) SetShapeNet(shape ShapeID, netID NetID) (NetID, error) {
	previous, err := u.Chip.SetShapeNet(shape, netID)
	if err == nil {
		u.push(func(c *Chip) error {
			_, err := c.SetShapeNet(shape, previous)
			return err
		})
	}
	return previous, err
}

func (u *UndoStack) SetShapePin(shape ShapeID, pinID PinID) (PinID, error) {
	previous, err := u.Chip.SetShapePin(shape, pinID)
	if err == nil {
		u.push(func(c *Chip) error {
			_, err := c.SetShapePin(shape, previous)
			return err
		})
	}
	return previous, err
}
