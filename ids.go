package libredadb

import "fmt"

// Typed identifiers for the objects stored in a Chip. Each ID type is a
// distinct integer type so that, for example, a NetID cannot be passed
// where a PinID is expected. The zero value of every ID type is invalid;
// counters start at 1.

// CellID identifies a cell (circuit template).
type CellID uint32

// CellInstID identifies a cell instance.
type CellInstID uint32

// PinID identifies a pin definition of a cell.
type PinID uint32

// PinInstID identifies a pin instance, the copy of a template pin that
// every cell instance carries.
type PinInstID uint32

// NetID identifies a net inside a cell.
type NetID uint32

// LayerID identifies a layout layer.
type LayerID uint16

// ShapeID identifies a shape. Shape IDs are unique across the whole chip,
// not just within one cell or layer.
type ShapeID uint32

// TerminalID is either a pin or a pin instance: the two kinds of objects
// a net can connect to.
type TerminalID struct {
	pin     PinID
	pinInst PinInstID
}

// PinTerminal wraps a pin as a TerminalID.
func PinTerminal(id PinID) TerminalID {
	return TerminalID{pin: id}
}

// PinInstTerminal wraps a pin instance as a TerminalID.
func PinInstTerminal(id PinInstID) TerminalID {
	return TerminalID{pinInst: id}
}

// IsPin reports whether the terminal is a pin of the cell itself.
func (t TerminalID) IsPin() bool { return t.pin != 0 }

// IsPinInst reports whether the terminal is a pin instance of a child.
func (t TerminalID) IsPinInst() bool { return t.pinInst != 0 }

// Pin returns the wrapped pin ID. The second result is false when the
// terminal is not a pin.
func (t TerminalID) Pin() (PinID, bool) { return t.pin, t.pin != 0 }

// PinInst returns the wrapped pin instance ID. The second result is false
// when the terminal is not a pin instance.
func (t TerminalID) PinInst() (PinInstID, bool) { return t.pinInst, t.pinInst != 0 }

func (t TerminalID) String() string {
	if t.pin != 0 {
		return fmt.Sprintf("pin(%d)", t.pin)
	}
	if t.pinInst != 0 {
		return fmt.Sprintf("pin_inst(%d)", t.pinInst)
	}
	return "terminal(invalid)"
}
