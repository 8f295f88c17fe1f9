package libredadb

import (
	"fmt"
	"sort"
)

// CreatePin adds a pin to a cell. Pin instances are retrofitted onto all
// existing instances of the cell. The pin name must be unique within the
// cell.
func (c *Chip) CreatePin(cell CellID, name string, direction Direction) (PinID, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, fmt.Errorf("create pin: %w", err)
	}
	if name == "" {
		return 0, fmt.Errorf("create pin in %q: %w", circ.name, ErrEmptyName)
	}
	for _, existing := range circ.pins {
		if c.pins[existing].name == name {
			return 0, fmt.Errorf("create pin %q in %q: %w", name, circ.name, ErrDuplicateName)
		}
	}

	c.nextPin++
	id := PinID(c.nextPin)
	c.pins[id] = &pin{
		id:        id,
		name:      name,
		direction: direction,
		circuit:   cell,
		position:  len(circ.pins),
	}
	circ.pins = append(circ.pins, id)

	// Existing instances of the cell get a pin instance for the new pin.
	for ref := range circ.references {
		inst := c.instances[ref]
		inst.pins = append(inst.pins, c.newPinInst(id, ref))
	}
	return id, nil
}

// RemovePin removes a pin and all its pin instances, disconnecting them
// first. Positions of the remaining pins shift down.
func (c *Chip) RemovePin(pinID PinID) error {
	p, err := c.pin(pinID)
	if err != nil {
		return fmt.Errorf("remove pin: %w", err)
	}
	circ := c.circuits[p.circuit]

	if _, err := c.DisconnectPin(pinID); err != nil {
		return fmt.Errorf("remove pin: %w", err)
	}

	// Remove the matching pin instance from every reference.
	for ref := range circ.references {
		inst := c.instances[ref]
		piID := inst.pins[p.position]
		c.detachPinInst(c.pinInsts[piID])
		delete(c.pinInsts, piID)
		inst.pins = append(inst.pins[:p.position], inst.pins[p.position+1:]...)
	}

	circ.pins = append(circ.pins[:p.position], circ.pins[p.position+1:]...)
	for i := p.position; i < len(circ.pins); i++ {
		c.pins[circ.pins[i]].position = i
	}
	c.dropShapePinLinks(pinID)
	delete(c.pins, pinID)
	return nil
}

// RenamePin changes the name of a pin. The name must stay unique within
// the cell.
func (c *Chip) RenamePin(pinID PinID, name string) error {
	p, err := c.pin(pinID)
	if err != nil {
		return fmt.Errorf("rename pin: %w", err)
	}
	if name == "" {
		return fmt.Errorf("rename pin %q: %w", p.name, ErrEmptyName)
	}
	circ := c.circuits[p.circuit]
	for _, other := range circ.pins {
		if other != pinID && c.pins[other].name == name {
			return fmt.Errorf("rename pin %q to %q: %w", p.name, name, ErrDuplicateName)
		}
	}
	p.name = name
	return nil
}

// Pins returns the pins of a cell in definition order.
func (c *Chip) Pins(cell CellID) ([]PinID, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return nil, err
	}
	out := make([]PinID, len(circ.pins))
	copy(out, circ.pins)
	return out, nil
}

// NumPins returns the number of pins of a cell.
func (c *Chip) NumPins(cell CellID) (int, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, err
	}
	return len(circ.pins), nil
}

// PinByName finds a pin of a cell by name.
func (c *Chip) PinByName(cell CellID, name string) (PinID, bool) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, false
	}
	for _, id := range circ.pins {
		if c.pins[id].name == name {
			return id, true
		}
	}
	return 0, false
}

// PinAt returns the pin at the given position of the cell's pin list.
func (c *Chip) PinAt(cell CellID, position int) (PinID, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, err
	}
	if position < 0 || position >= len(circ.pins) {
		return 0, fmt.Errorf("pin position %d of cell %q: %w", position, circ.name, ErrNotFound)
	}
	return circ.pins[position], nil
}

// PinName returns the name of a pin.
func (c *Chip) PinName(pinID PinID) (string, error) {
	p, err := c.pin(pinID)
	if err != nil {
		return "", err
	}
	return p.name, nil
}

// PinDirection returns the signal direction of a pin.
func (c *Chip) PinDirection(pinID PinID) (Direction, error) {
	p, err := c.pin(pinID)
	if err != nil {
		return DirectionNone, err
	}
	return p.direction, nil
}

// PinCell returns the cell a pin belongs to.
func (c *Chip) PinCell(pinID PinID) (CellID, error) {
	p, err := c.pin(pinID)
	if err != nil {
		return 0, err
	}
	return p.circuit, nil
}

// PinPosition returns the index of the pin in its cell's pin list.
func (c *Chip) PinPosition(pinID PinID) (int, error) {
	p, err := c.pin(pinID)
	if err != nil {
		return 0, err
	}
	return p.position, nil
}

// PinInstances returns the pin instances of a cell instance, in template
// pin order.
func (c *Chip) PinInstances(instID CellInstID) ([]PinInstID, error) {
	inst, err := c.instance(instID)
	if err != nil {
		return nil, err
	}
	out := make([]PinInstID, len(inst.pins))
	copy(out, inst.pins)
	return out, nil
}

// PinInstAt returns the pin instance matching the template pin position.
func (c *Chip) PinInstAt(instID CellInstID, position int) (PinInstID, error) {
	inst, err := c.instance(instID)
	if err != nil {
		return 0, err
	}
	if position < 0 || position >= len(inst.pins) {
		return 0, fmt.Errorf("pin instance position %d: %w", position, ErrNotFound)
	}
	return inst.pins[position], nil
}

// TemplatePin returns the template pin of a pin instance.
func (c *Chip) TemplatePin(piID PinInstID) (PinID, error) {
	pi, err := c.pinInst(piID)
	if err != nil {
		return 0, err
	}
	return pi.pin, nil
}

// InstanceOfPinInst returns the cell instance a pin instance belongs to.
func (c *Chip) InstanceOfPinInst(piID PinInstID) (CellInstID, error) {
	pi, err := c.pinInst(piID)
	if err != nil {
		return 0, err
	}
	return pi.inst, nil
}

// CreateNet creates a net inside the parent cell. The name may be empty
// for an anonymous net; a non-empty name must be unique within the cell.
func (c *Chip) CreateNet(parent CellID, name string) (NetID, error) {
	circ, err := c.circuit(parent)
	if err != nil {
		return 0, fmt.Errorf("create net: %w", err)
	}
	if name != "" {
		if _, exists := circ.netsByName[name]; exists {
			return 0, fmt.Errorf("create net %q in %q: %w", name, circ.name, ErrDuplicateName)
		}
	}
	return c.newNet(circ, name), nil
}

// newNet allocates a net inside circ. Name uniqueness has been checked
// by the caller.
func (c *Chip) newNet(circ *circuit, name string) NetID {
	c.nextNet++
	id := NetID(c.nextNet)
	c.nets[id] = &net{
		id:       id,
		name:     name,
		parent:   circ.id,
		pins:     make(map[PinID]struct{}),
		pinInsts: make(map[PinInstID]struct{}),
	}
	circ.nets[id] = struct{}{}
	if name != "" {
		circ.netsByName[name] = id
	}
	return id
}

// RemoveNet removes a net, disconnecting all connected terminals and
// clearing shape links.
func (c *Chip) RemoveNet(netID NetID) error {
	n, err := c.net(netID)
	if err != nil {
		return fmt.Errorf("remove net: %w", err)
	}
	c.detachNet(n)
	delete(c.nets, netID)
	return nil
}

// detachNet disconnects all terminals, clears shape links and removes
// the net from its parent circuit's indexes.
func (c *Chip) detachNet(n *net) {
	for pinID := range n.pins {
		c.pins[pinID].net = 0
	}
	for piID := range n.pinInsts {
		c.pinInsts[piID].net = 0
	}
	for shapeID := range c.netShapes[n.id] {
		delete(c.shapeNets, shapeID)
	}
	delete(c.netShapes, n.id)

	circ := c.circuits[n.parent]
	delete(circ.nets, n.id)
	if n.name != "" {
		delete(circ.netsByName, n.name)
	}
}

// RenameNet changes the name of a net. An empty name clears the name.
func (c *Chip) RenameNet(netID NetID, name string) error {
	n, err := c.net(netID)
	if err != nil {
		return fmt.Errorf("rename net: %w", err)
	}
	circ := c.circuits[n.parent]
	if name != "" {
		if other, exists := circ.netsByName[name]; exists && other != netID {
			return fmt.Errorf("rename net to %q: %w", name, ErrDuplicateName)
		}
	}
	if n.name != "" {
		delete(circ.netsByName, n.name)
	}
	n.name = name
	if name != "" {
		circ.netsByName[name] = netID
	}
	return nil
}

// NetByName finds a named net inside a cell.
func (c *Chip) NetByName(cell CellID, name string) (NetID, bool) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, false
	}
	id, ok := circ.netsByName[name]
	return id, ok
}

// NetName returns the name of a net. Anonymous nets return the empty
// string.
func (c *Chip) NetName(netID NetID) (string, error) {
	n, err := c.net(netID)
	if err != nil {
		return "", err
	}
	return n.name, nil
}

// NetCell returns the cell a net lives in.
func (c *Chip) NetCell(netID NetID) (CellID, error) {
	n, err := c.net(netID)
	if err != nil {
		return 0, err
	}
	return n.parent, nil
}

// NetZero returns the implicit logic constant LOW net of a cell.
func (c *Chip) NetZero(cell CellID) (NetID, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, err
	}
	return circ.netLow, nil
}

// NetOne returns the implicit logic constant HIGH net of a cell.
func (c *Chip) NetOne(cell CellID) (NetID, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, err
	}
	return circ.netHigh, nil
}

// IsConstantNet reports whether the net is one of its cell's implicit
// constant nets.
func (c *Chip) IsConstantNet(netID NetID) (bool, error) {
	n, err := c.net(netID)
	if err != nil {
		return false, err
	}
	circ := c.circuits[n.parent]
	return netID == circ.netLow || netID == circ.netHigh, nil
}

// Nets returns all nets of a cell (including the implicit constant
// nets), sorted for determinism.
func (c *Chip) Nets(cell CellID) ([]NetID, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return nil, err
	}
	out := make([]NetID, 0, len(circ.nets))
	for id := range circ.nets {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// NumNets returns the number of nets of a cell, including the implicit
// constant nets.
func (c *Chip) NumNets(cell CellID) (int, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, err
	}
	return len(circ.nets), nil
}

// ConnectPin connects a pin of a cell to a net of the same cell and
// returns the previously connected net (zero if none).
func (c *Chip) ConnectPin(pinID PinID, netID NetID) (NetID, error) {
	p, err := c.pin(pinID)
	if err != nil {
		return 0, fmt.Errorf("connect pin: %w", err)
	}
	n, err := c.net(netID)
	if err != nil {
		return 0, fmt.Errorf("connect pin %q: %w", p.name, err)
	}
	if n.parent != p.circuit {
		return 0, fmt.Errorf("connect pin %q: net %d lives in a different cell: %w",
			p.name, netID, ErrNotFound)
	}
	previous := p.net
	if previous == netID {
		return previous, nil
	}
	if previous != 0 {
		delete(c.nets[previous].pins, pinID)
	}
	p.net = netID
	n.pins[pinID] = struct{}{}
	return previous, nil
}

// DisconnectPin disconnects a pin from its net and returns the net it
// was connected to (zero if none).
func (c *Chip) DisconnectPin(pinID PinID) (NetID, error) {
	p, err := c.pin(pinID)
	if err != nil {
		return 0, fmt.Errorf("disconnect pin: %w", err)
	}
	previous := p.net
	if previous != 0 {
		delete(c.nets[previous].pins, pinID)
		p.net = 0
	}
	return previous, nil
}

// ConnectPinInst connects a pin instance to a net living in the parent
// cell of the pin instance's cell instance. Returns the previous net.
func (c *Chip) ConnectPinInst(piID PinInstID, netID NetID) (NetID, error) {
	pi, err := c.pinInst(piID)
	if err != nil {
		return 0, fmt.Errorf("connect pin instance: %w", err)
	}
	n, err := c.net(netID)
	if err != nil {
		return 0, fmt.Errorf("connect pin instance %d: %w", piID, err)
	}
	inst := c.instances[pi.inst]
	if n.parent != inst.parent {
		return 0, fmt.Errorf("connect pin instance %d: net %d lives in a different cell: %w",
			piID, netID, ErrNotFound)
	}
	previous := pi.net
	if previous == netID {
		return previous, nil
	}
	if previous != 0 {
		delete(c.nets[previous].pinInsts, piID)
	}
	pi.net = netID
	n.pinInsts[piID] = struct{}{}
	return previous, nil
}

// DisconnectPinInst disconnects a pin instance from its net and returns
// the net it was connected to (zero if none).
func (c *Chip) DisconnectPinInst(piID PinInstID) (NetID, error) {
	pi, err := c.pinInst(piID)
	if err != nil {
		return 0, fmt.Errorf("disconnect pin instance: %w", err)
	}
	previous := pi.net
	if previous != 0 {
		delete(c.nets[previous].pinInsts, piID)
		pi.net = 0
	}
	return previous, nil
}

// NetOfPin returns the net a pin is connected to (zero if unconnected).
func (c *Chip) NetOfPin(pinID PinID) (NetID, error) {
	p, err := c.pin(pinID)
	if err != nil {
		return 0, err
	}
	return p.net, nil
}

// NetOfPinInst returns the net a pin instance is connected to (zero if
// unconnected).
func (c *Chip) NetOfPinInst(piID PinInstID) (NetID, error) {
	pi, err := c.pinInst(piID)
	if err != nil {
		return 0, err
	}
	return pi.net, nil
}

// PinsOfNet returns the pins of the parent cell connected to the net.
func (c *Chip) PinsOfNet(netID NetID) ([]PinID, error) {
	n, err := c.net(netID)
	if err != nil {
		return nil, err
	}
	out := make([]PinID, 0, len(n.pins))
	for id := range n.pins {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// PinInstsOfNet returns the pin instances connected to the net.
func (c *Chip) PinInstsOfNet(netID NetID) ([]PinInstID, error) {
	n, err := c.net(netID)
	if err != nil {
		return nil, err
	}
	out := make([]PinInstID, 0, len(n.pinInsts))
	for id := range n.pinInsts {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// TerminalsOfNet returns all terminals (pins and pin instances)
// connected to the net.
func (c *Chip) TerminalsOfNet(netID NetID) ([]TerminalID, error) {
	pins, err := c.PinsOfNet(netID)
	if err != nil {
		return nil, err
	}
	pinInsts, err := c.PinInstsOfNet(netID)
	if err != nil {
		return nil, err
	}
	out := make([]TerminalID, 0, len(pins)+len(pinInsts))
	for _, p := range pins {
		out = append(out, PinTerminal(p))
	}
	for _, pi := range pinInsts {
		out = append(out, PinInstTerminal(pi))
	}
	return out, nil
}

// NumTerminals returns the number of terminals connected to the net.
func (c *Chip) NumTerminals(netID NetID) (int, error) {
	n, err := c.net(netID)
	if err != nil {
		return 0, err
	}
	return len(n.pins) + len(n.pinInsts), nil
}

// newPinInst allocates a pin instance for the given template pin on the
// given cell instance.
func (c *Chip) newPinInst(pinID PinID, instID CellInstID) PinInstID {
	c.nextPinInst++
	id := PinInstID(c.nextPinInst)
	c.pinInsts[id] = &pinInst{id: id, pin: pinID, inst: instID}
	return id
}

// detachPinInst removes a pin instance from the net it is connected to.
func (c *Chip) detachPinInst(pi *pinInst) {
	if pi.net != 0 {
		delete(c.nets[pi.net].pinInsts, pi.id)
		pi.net = 0
	}
}
