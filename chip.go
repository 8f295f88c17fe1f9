package libredadb

import "fmt"

// circuit is a cell: the template for cell instances. It carries the
// netlist content (pins, nets) and the layout content (shapes per layer)
// of the cell.
type circuit struct {
	id   CellID
	name string

	// Instances inside this circuit.
	instances map[CellInstID]struct{}
	// Named instances inside this circuit. Not every instance has a name.
	instancesByName map[string]CellInstID
	// Instances elsewhere that use this circuit as template.
	references map[CellInstID]struct{}

	// Direct dependencies (cells instantiated inside this circuit) with
	// a count of how many instances of each are present.
	dependencies map[CellID]int
	// Cells that contain an instance of this circuit, with counts.
	dependents map[CellID]int

	// Ordered pin definitions. The pin structs live on the Chip.
	pins []PinID
	// Nets in this circuit.
	nets map[NetID]struct{}
	// Named nets.
	netsByName map[string]NetID
	// Implicit logic constant nets.
	netLow, netHigh NetID

	// Geometry per layer.
	shapes map[LayerID]map[ShapeID]Geometry

	properties PropertyStore
	// Properties of the instances inside this circuit, stored on the
	// template to keep instances lightweight.
	instanceProperties map[CellInstID]*PropertyStore
}

// instance is one placement of a template circuit inside a parent.
type instance struct {
	id       CellInstID
	name     string // empty for anonymous instances
	parent   CellID
	template CellID
	// Pin instances, in template pin order.
	pins      []PinInstID
	transform Transform
}

// pin is a pin definition of a circuit.
type pin struct {
	id        PinID
	name      string
	direction Direction
	circuit   CellID
	net       NetID // 0 when unconnected
	position  int   // index into circuit.pins
}

// pinInst is the copy of a template pin carried by a cell instance.
type pinInst struct {
	id   PinInstID
	pin  PinID
	inst CellInstID
	net  NetID // 0 when unconnected
}

// net is an electrical net inside a circuit.
type net struct {
	id     NetID
	name   string // empty for anonymous nets
	parent CellID
	// Connected pins of the parent circuit itself.
	pins map[PinID]struct{}
	// Connected pin instances of child instances.
	pinInsts map[PinInstID]struct{}
}

// LayerInfo describes a layout layer.
type LayerInfo struct {
	// Index is the main layer number (GDS layer).
	Index uint32
	// Datatype is the sub-number of the layer (GDS datatype).
	Datatype uint32
	// Name is optional.
	Name string
}

type layerPair struct {
	index, datatype uint32
}

// shapeHome locates a shape: the cell and layer that contain it.
type shapeHome struct {
	cell  CellID
	layer LayerID
}

// Chip is the in-memory chip database: a netlist and a layout sharing one
// cell hierarchy. The zero value is not usable; create chips with NewChip.
//
// A Chip is not safe for concurrent mutation. Read-only access from
// multiple goroutines is safe.
type Chip struct {
	circuits       map[CellID]*circuit
	circuitsByName map[string]CellID
	instances      map[CellInstID]*instance
	nets           map[NetID]*net
	pins           map[PinID]*pin
	pinInsts       map[PinInstID]*pinInst

	nextCell    uint32
	nextInst    uint32
	nextPin     uint32
	nextPinInst uint32
	nextNet     uint32
	nextShape   uint32
	nextLayer   uint16

	// Database unit: layout coordinates are multiples of 1/dbu of a
	// micrometer. Defaults to 1000 (coordinates in nanometers).
	dbu Coord

	layerInfo    map[LayerID]*LayerInfo
	layersByName map[string]LayerID
	layersByPair map[layerPair]LayerID

	// Location of every shape.
	shapeHomes map[ShapeID]shapeHome
	// Layout-to-netlist links.
	shapeNets map[ShapeID]NetID
	netShapes map[NetID]map[ShapeID]struct{}
	shapePins map[ShapeID]PinID
	pinShapes map[PinID]map[ShapeID]struct{}

	properties PropertyStore
}

// DefaultDBU is the database unit of a fresh chip: 1000 units per
// micrometer, i.e. coordinates in nanometers.
const DefaultDBU Coord = 1000

// NewChip creates an empty chip database.
func NewChip() *Chip {
	return &Chip{
		circuits:       make(map[CellID]*circuit),
		circuitsByName: make(map[string]CellID),
		instances:      make(map[CellInstID]*instance),
		nets:           make(map[NetID]*net),
		pins:           make(map[PinID]*pin),
		pinInsts:       make(map[PinInstID]*pinInst),
		dbu:            DefaultDBU,
		layerInfo:      make(map[LayerID]*LayerInfo),
		layersByName:   make(map[string]LayerID),
		layersByPair:   make(map[layerPair]LayerID),
		shapeHomes:     make(map[ShapeID]shapeHome),
		shapeNets:      make(map[ShapeID]NetID),
		netShapes:      make(map[NetID]map[ShapeID]struct{}),
		shapePins:      make(map[ShapeID]PinID),
		pinShapes:      make(map[PinID]map[ShapeID]struct{}),
	}
}

// Fallible internal lookups. Every public accessor goes through these so
// that a stale or foreign ID surfaces as ErrNotFound instead of a panic.

func (c *Chip) circuit(id CellID) (*circuit, error) {
	if circ, ok := c.circuits[id]; ok {
		return circ, nil
	}
	return nil, fmt.Errorf("cell %d: %w", id, ErrNotFound)
}

func (c *Chip) instance(id CellInstID) (*instance, error) {
	if inst, ok := c.instances[id]; ok {
		return inst, nil
	}
	return nil, fmt.Errorf("cell instance %d: %w", id, ErrNotFound)
}

func (c *Chip) pin(id PinID) (*pin, error) {
	if p, ok := c.pins[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("pin %d: %w", id, ErrNotFound)
}

func (c *Chip) pinInst(id PinInstID) (*pinInst, error) {
	if p, ok := c.pinInsts[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("pin instance %d: %w", id, ErrNotFound)
}

func (c *Chip) net(id NetID) (*net, error) {
	if n, ok := c.nets[id]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("net %d: %w", id, ErrNotFound)
}

func (c *Chip) layer(id LayerID) (*LayerInfo, error) {
	if info, ok := c.layerInfo[id]; ok {
		return info, nil
	}
	return nil, fmt.Errorf("layer %d: %w", id, ErrNotFound)
}

// SetChipProperty sets a property of the chip itself.
func (c *Chip) SetChipProperty(key string, value PropertyValue) {
	c.properties.Set(key, value)
}

// ChipProperty returns a property of the chip itself.
func (c *Chip) ChipProperty(key string) (PropertyValue, bool) {
	return c.properties.Get(key)
}

// SetCellProperty sets a property of a cell.
func (c *Chip) SetCellProperty(cell CellID, key string, value PropertyValue) error {
	circ, err := c.circuit(cell)
	if err != nil {
		return err
	}
	circ.properties.Set(key, value)
	return nil
}

// CellProperty returns a property of a cell.
func (c *Chip) CellProperty(cell CellID, key string) (PropertyValue, bool, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return PropertyValue{}, false, err
	}
	v, ok := circ.properties.Get(key)
	return v, ok, nil
}

// SetInstanceProperty sets a property of a cell instance. Instance
// properties live on the parent cell to keep instances lightweight.
func (c *Chip) SetInstanceProperty(inst CellInstID, key string, value PropertyValue) error {
	in, err := c.instance(inst)
	if err != nil {
		return err
	}
	parent := c.circuits[in.parent]
	if parent.instanceProperties == nil {
		parent.instanceProperties = make(map[CellInstID]*PropertyStore)
	}
	store, ok := parent.instanceProperties[inst]
	if !ok {
		store = &PropertyStore{}
		parent.instanceProperties[inst] = store
	}
	store.Set(key, value)
	return nil
}

// InstanceProperty returns a property of a cell instance.
func (c *Chip) InstanceProperty(inst CellInstID, key string) (PropertyValue, bool, error) {
	in, err := c.instance(inst)
	if err != nil {
		return PropertyValue{}, false, err
	}
	store, ok := c.circuits[in.parent].instanceProperties[inst]
	if !ok {
		return PropertyValue{}, false, nil
	}
	v, found := store.Get(key)
	return v, found, nil
}

// ChipPropertyKeys returns the keys of all chip properties, sorted.
func (c *Chip) ChipPropertyKeys() []string {
	return c.properties.Keys()
}

// CellPropertyKeys returns the keys of all properties of a cell, sorted.
func (c *Chip) CellPropertyKeys(cell CellID) ([]string, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return nil, err
	}
	return circ.properties.Keys(), nil
}

// InstancePropertyKeys returns the keys of all properties of a cell
// instance, sorted.
func (c *Chip) InstancePropertyKeys(inst CellInstID) ([]string, error) {
	in, err := c.instance(inst)
	if err != nil {
		return nil, err
	}
	store, ok := c.circuits[in.parent].instanceProperties[inst]
	if !ok {
		return nil, nil
	}
	return store.Keys(), nil
}

// DBU returns the database unit: the number of coordinate units per
// micrometer.
func (c *Chip) DBU() Coord {
	return c.dbu
}

// SetDBU sets the database unit.
func (c *Chip) SetDBU(dbu Coord) {
	c.dbu = dbu
}
