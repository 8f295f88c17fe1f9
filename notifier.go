package libredadb

// EventKind identifies which mutation an Event reports.
type EventKind int

const (
	EventCellCreated EventKind = iota + 1
	EventCellRemoving
	EventCellRenamed
	EventInstanceCreated
	EventInstanceRemoving
	EventInstanceRenamed
	EventInstanceMoved
	EventPinCreated
	EventPinRemoving
	EventPinRenamed
	EventNetCreated
	EventNetRemoving
	EventNetRenamed
	EventPinConnected
	EventPinDisconnected
	EventPinInstConnected
	EventPinInstDisconnected
	EventShapeInserted
	EventShapeRemoving
	EventShapeReplaced
	EventShapeNetChanged
	EventShapePinChanged
)

// Event describes one mutation of the chip. Only the fields relevant to
// the kind are set. "Removing" events fire before the object is gone,
// so handlers can still inspect it.
type Event struct {
	Kind    EventKind
	Cell    CellID
	Inst    CellInstID
	Pin     PinID
	PinInst PinInstID
	Net     NetID
	Layer   LayerID
	Shape   ShapeID
	Name    string
}

// Notifier wraps a chip and reports every mutation that goes through it
// to the registered handlers. Reads pass straight through via the
// embedded chip. Mutations applied directly to the underlying chip are
// not observed.
type Notifier struct {
	*Chip
	handlers []func(Event)
}

// NewNotifier wraps a chip for observation.
func NewNotifier(c *Chip) *Notifier {
	return &Notifier{Chip: c}
}

// Observe registers a handler. Handlers run synchronously, in
// registration order, on the goroutine performing the mutation.
func (n *Notifier) Observe(f func(Event)) {
	n.handlers = append(n.handlers, f)
}

func (n *Notifier) emit(ev Event) {
	for _, f := range n.handlers {
		f(ev)
	}
}

func (n *Notifier) CreateCell(name string) (CellID, error) {
	id, err := n.Chip.CreateCell(name)
	if err == nil {
		n.emit(Event{Kind: EventCellCreated, Cell: id, Name: name})
	}
	return id, err
}

func (n *Notifier) RemoveCell(cell CellID) error {
	if _, err := n.Chip.circuit(cell); err != nil {
		return err
	}
	n.emit(Event{Kind: EventCellRemoving, Cell: cell})
	return n.Chip.RemoveCell(cell)
}

func (n *Notifier) RenameCell(cell CellID, name string) error {
	err := n.Chip.RenameCell(cell, name)
	if err == nil {
		n.emit(Event{Kind: EventCellRenamed, Cell: cell, Name: name})
	}
	return err
}

func (n *Notifier) CreateInstance(parent, template CellID, name string) (CellInstID, error) {
	id, err := n.Chip.CreateInstance(parent, template, name)
	if err == nil {
		n.emit(Event{Kind: EventInstanceCreated, Cell: parent, Inst: id, Name: name})
	}
	return id, err
}

func (n *Notifier) RemoveInstance(inst CellInstID) error {
	i, err := n.Chip.instance(inst)
	if err != nil {
		return err
	}
	n.emit(Event{Kind: EventInstanceRemoving, Cell: i.parent, Inst: inst})
	return n.Chip.RemoveInstance(inst)
}

func (n *Notifier) RenameInstance(inst CellInstID, name string) error {
	err := n.Chip.RenameInstance(inst, name)
	if err == nil {
		n.emit(Event{Kind: EventInstanceRenamed, Inst: inst, Name: name})
	}
	return err
}

func (n *Notifier) SetInstanceTransform(inst CellInstID, tf Transform) (Transform, error) {
	previous, err := n.Chip.SetInstanceTransform(inst, tf)
	if err == nil {
		n.emit(Event{Kind: EventInstanceMoved, Inst: inst})
	}
	return previous, err
}

func (n *Notifier) CreatePin(cell CellID, name string, dir Direction) (PinID, error) {
	id, err := n.Chip.CreatePin(cell, name, dir)
	if err == nil {
		n.emit(Event{Kind: EventPinCreated, Cell: cell, Pin: id, Name: name})
	}
	return id, err
}

func (n *Notifier) RemovePin(pin PinID) error {
	p, err := n.Chip.pin(pin)
	if err != nil {
		return err
	}
	n.emit(Event{Kind: EventPinRemoving, Cell: p.circuit, Pin: pin})
	return n.Chip.RemovePin(pin)
}

func (n *Notifier) RenamePin(pin PinID, name string) error {
	err := n.Chip.RenamePin(pin, name)
	if err == nil {
		n.emit(Event{Kind: EventPinRenamed, Pin: pin, Name: name})
	}
	return err
}

func (n *Notifier) CreateNet(cell CellID, name string) (NetID, error) {
	id, err := n.Chip.CreateNet(cell, name)
	if err == nil {
		n.emit(Event{Kind: EventNetCreated, Cell: cell, Net: id, Name: name})
	}
	return id, err
}

func (n *Notifier) RemoveNet(netID NetID) error {
	nn, err := n.Chip.net(netID)
	if err != nil {
		return err
	}
	n.emit(Event{Kind: EventNetRemoving, Cell: nn.parent, Net: netID})
	return n.Chip.RemoveNet(netID)
}

func (n *Notifier) RenameNet(netID NetID, name string) error {
	err := n.Chip.RenameNet(netID, name)
	if err == nil {
		n.emit(Event{Kind: EventNetRenamed, Net: netID, Name: name})
	}
	return err
}

func (n *Notifier) ConnectPin(pin PinID, netID NetID) (NetID, error) {
	previous, err := n.Chip.ConnectPin(pin, netID)
	if err == nil {
		n.emit(Event{Kind: EventPinConnected, Pin: pin, Net: netID})
	}
	return previous, err
}

func (n *Notifier) DisconnectPin(pin PinID) (NetID, error) {
	previous, err := n.Chip.DisconnectPin(pin)
	if err == nil {
		n.emit(Event{Kind: EventPinDisconnected, Pin: pin, Net: previous})
	}
	return previous, err
}

func (n *Notifier) ConnectPinInst(pinInst PinInstID, netID NetID) (NetID, error) {
	previous, err := n.Chip.ConnectPinInst(pinInst, netID)
	if err == nil {
		n.emit(Event{Kind: EventPinInstConnected, PinInst: pinInst, Net: netID})
	}
	return previous, err
}

func (n *Notifier) DisconnectPinInst(pinInst PinInstID) (NetID, error) {
	previous, err := n.Chip.DisconnectPinInst(pinInst)
	if err == nil {
		n.emit(Event{Kind: EventPinInstDisconnected, PinInst: pinInst, Net: previous})
	}
	return previous, err
}

func (n *Notifier) InsertShape(cell CellID, layer LayerID, g Geometry) (ShapeID, error) {
	id, err := n.Chip.InsertShape(cell, layer, g)
	if err == nil {
		n.emit(Event{Kind: EventShapeInserted, Cell: cell, Layer: layer, Shape: id})
	}
	return id, err
}

func (n *Notifier) RemoveShape(shape ShapeID) (Geometry, error) {
	cell, layer, err := n.Chip.ShapeHome(shape)
	if err != nil {
		return nil, err
	}
	n.emit(Event{Kind: EventShapeRemoving, Cell: cell, Layer: layer, Shape: shape})
	return n.Chip.RemoveShape(shape)
}

func (n *Notifier) ReplaceShape(shape ShapeID, g Geometry) (Geometry, error) {
	previous, err := n.Chip.ReplaceShape(shape, g)
	if err == nil {
		n.emit(Event{Kind: EventShapeReplaced, Shape: shape})
	}
	return previous, err
}

func (n *Notifier) SetShapeNet(shape ShapeID, netID NetID) (NetID, error) {
	previous, err := n.Chip.SetShapeNet(shape, netID)
	if err == nil {
		n.emit(Event{Kind: EventShapeNetChanged, Shape: shape, Net: netID})
	}
	return previous, err
}

func (n *Notifier) SetShapePin(shape ShapeID, pinID PinID) (PinID, error) {
	previous, err := n.Chip.SetShapePin(shape, pinID)
	if err == nil {
		n.emit(Event{Kind: EventShapePinChanged, Shape: shape, Pin: pinID})
	}
	return previous, err
}
