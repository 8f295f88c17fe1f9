package libredadb

import (
	"fmt"
	"sort"
)

// CreateCell creates a new, empty cell. The name must be unique within
// the chip.
func (c *Chip) CreateCell(name string) (CellID, error) {
	if name == "" {
		return 0, fmt.Errorf("create cell: %w", ErrEmptyName)
	}
	if _, exists := c.circuitsByName[name]; exists {
		return 0, fmt.Errorf("create cell %q: %w", name, ErrDuplicateName)
	}
	c.nextCell++
	id := CellID(c.nextCell)
	circ := &circuit{
		id:              id,
		name:            name,
		instances:       make(map[CellInstID]struct{}),
		instancesByName: make(map[string]CellInstID),
		references:      make(map[CellInstID]struct{}),
		dependencies:    make(map[CellID]int),
		dependents:      make(map[CellID]int),
		nets:            make(map[NetID]struct{}),
		netsByName:      make(map[string]NetID),
		shapes:          make(map[LayerID]map[ShapeID]Geometry),
	}
	c.circuits[id] = circ
	c.circuitsByName[name] = id

	// Every circuit carries implicit logic constant nets.
	circ.netLow = c.newNet(circ, "")
	circ.netHigh = c.newNet(circ, "")
	return id, nil
}

// RemoveCell removes a cell, all instances inside it and all instances
// of it elsewhere.
func (c *Chip) RemoveCell(cell CellID) error {
	circ, err := c.circuit(cell)
	if err != nil {
		return fmt.Errorf("remove cell: %w", err)
	}

	// Remove all instances of this cell used elsewhere.
	for ref := range cloneIDSet(circ.references) {
		if err := c.RemoveInstance(ref); err != nil {
			return fmt.Errorf("remove cell %q: %w", circ.name, err)
		}
	}
	// Remove child instances.
	for inst := range cloneIDSet(circ.instances) {
		if err := c.RemoveInstance(inst); err != nil {
			return fmt.Errorf("remove cell %q: %w", circ.name, err)
		}
	}
	// Remove nets.
	for netID := range circ.nets {
		n := c.nets[netID]
		c.detachNet(n)
		delete(c.nets, netID)
	}
	// Remove pins.
	for _, pinID := range circ.pins {
		c.dropShapePinLinks(pinID)
		delete(c.pins, pinID)
	}
	// Remove shapes.
	for _, layerShapes := range circ.shapes {
		for shapeID := range layerShapes {
			c.unlinkShape(shapeID)
			delete(c.shapeHomes, shapeID)
		}
	}

	delete(c.circuitsByName, circ.name)
	delete(c.circuits, cell)
	return nil
}

// RenameCell changes the name of a cell. The new name must be unique.
func (c *Chip) RenameCell(cell CellID, name string) error {
	circ, err := c.circuit(cell)
	if err != nil {
		return fmt.Errorf("rename cell: %w", err)
	}
	if name == "" {
		return fmt.Errorf("rename cell %q: %w", circ.name, ErrEmptyName)
	}
	if other, exists := c.circuitsByName[name]; exists && other != cell {
		return fmt.Errorf("rename cell %q to %q: %w", circ.name, name, ErrDuplicateName)
	}
	delete(c.circuitsByName, circ.name)
	circ.name = name
	c.circuitsByName[name] = cell
	return nil
}

// CellByName finds a cell by its name.
func (c *Chip) CellByName(name string) (CellID, bool) {
	id, ok := c.circuitsByName[name]
	return id, ok
}

// CellName returns the name of a cell.
func (c *Chip) CellName(cell CellID) (string, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return "", err
	}
	return circ.name, nil
}

// NumCells returns the number of cell templates in the chip.
func (c *Chip) NumCells() int {
	return len(c.circuits)
}

// EachCell calls f for every cell of the chip, in unspecified order.
func (c *Chip) EachCell(f func(CellID)) {
	for id := range c.circuits {
		f(id)
	}
}

// Cells returns the IDs of all cells, sorted for determinism.
func (c *Chip) Cells() []CellID {
	out := make([]CellID, 0, len(c.circuits))
	for id := range c.circuits {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CreateInstance creates an instance of template inside parent. The name
// may be empty for an anonymous instance; a non-empty name must be unique
// within the parent. Creating an instance that would make a cell contain
// itself (directly or transitively) fails with ErrRecursiveInstance.
func (c *Chip) CreateInstance(parent, template CellID, name string) (CellInstID, error) {
	parentCirc, err := c.circuit(parent)
	if err != nil {
		return 0, fmt.Errorf("create instance: parent: %w", err)
	}
	templateCirc, err := c.circuit(template)
	if err != nil {
		return 0, fmt.Errorf("create instance: template: %w", err)
	}
	if name != "" {
		if _, exists := parentCirc.instancesByName[name]; exists {
			return 0, fmt.Errorf("create instance %q in %q: %w", name, parentCirc.name, ErrDuplicateName)
		}
	}
	if c.dependsOn(template, parent) || template == parent {
		return 0, fmt.Errorf("create instance of %q in %q: %w",
			templateCirc.name, parentCirc.name, ErrRecursiveInstance)
	}

	c.nextInst++
	id := CellInstID(c.nextInst)
	inst := &instance{
		id:        id,
		name:      name,
		parent:    parent,
		template:  template,
		transform: IdentityTransform(),
	}
	// Create pin instances for all template pins.
	inst.pins = make([]PinInstID, 0, len(templateCirc.pins))
	for _, pinID := range templateCirc.pins {
		inst.pins = append(inst.pins, c.newPinInst(pinID, id))
	}

	c.instances[id] = inst
	parentCirc.instances[id] = struct{}{}
	if name != "" {
		parentCirc.instancesByName[name] = id
	}
	templateCirc.references[id] = struct{}{}
	parentCirc.dependencies[template]++
	templateCirc.dependents[parent]++
	return id, nil
}

// RemoveInstance removes a cell instance, disconnecting its pin
// instances first.
func (c *Chip) RemoveInstance(instID CellInstID) error {
	inst, err := c.instance(instID)
	if err != nil {
		return fmt.Errorf("remove instance: %w", err)
	}
	for _, pi := range inst.pins {
		c.detachPinInst(c.pinInsts[pi])
		delete(c.pinInsts, pi)
	}

	parentCirc := c.circuits[inst.parent]
	templateCirc := c.circuits[inst.template]
	delete(parentCirc.instances, instID)
	if inst.name != "" {
		delete(parentCirc.instancesByName, inst.name)
	}
	delete(parentCirc.instanceProperties, instID)
	delete(templateCirc.references, instID)

	if parentCirc.dependencies[inst.template]--; parentCirc.dependencies[inst.template] == 0 {
		delete(parentCirc.dependencies, inst.template)
	}
	if templateCirc.dependents[inst.parent]--; templateCirc.dependents[inst.parent] == 0 {
		delete(templateCirc.dependents, inst.parent)
	}

	delete(c.instances, instID)
	return nil
}

// RenameInstance changes the name of a cell instance. An empty name
// clears the name. A non-empty name must be unique within the parent.
func (c *Chip) RenameInstance(instID CellInstID, name string) error {
	inst, err := c.instance(instID)
	if err != nil {
		return fmt.Errorf("rename instance: %w", err)
	}
	parentCirc := c.circuits[inst.parent]
	if name != "" {
		if other, exists := parentCirc.instancesByName[name]; exists && other != instID {
			return fmt.Errorf("rename instance to %q: %w", name, ErrDuplicateName)
		}
	}
	if inst.name != "" {
		delete(parentCirc.instancesByName, inst.name)
	}
	inst.name = name
	if name != "" {
		parentCirc.instancesByName[name] = instID
	}
	return nil
}

// InstanceByName finds a named instance inside a parent cell.
func (c *Chip) InstanceByName(parent CellID, name string) (CellInstID, bool) {
	circ, err := c.circuit(parent)
	if err != nil {
		return 0, false
	}
	id, ok := circ.instancesByName[name]
	return id, ok
}

// InstanceName returns the name of an instance. Anonymous instances
// return the empty string.
func (c *Chip) InstanceName(instID CellInstID) (string, error) {
	inst, err := c.instance(instID)
	if err != nil {
		return "", err
	}
	return inst.name, nil
}

// ParentCell returns the cell that contains the instance.
func (c *Chip) ParentCell(instID CellInstID) (CellID, error) {
	inst, err := c.instance(instID)
	if err != nil {
		return 0, err
	}
	return inst.parent, nil
}

// TemplateCell returns the cell the instance is a copy of.
func (c *Chip) TemplateCell(instID CellInstID) (CellID, error) {
	inst, err := c.instance(instID)
	if err != nil {
		return 0, err
	}
	return inst.template, nil
}

// EachInstance calls f for every instance inside the cell.
func (c *Chip) EachInstance(cell CellID, f func(CellInstID)) error {
	circ, err := c.circuit(cell)
	if err != nil {
		return err
	}
	for id := range circ.instances {
		f(id)
	}
	return nil
}

// Instances returns the instances inside the cell, sorted for determinism.
func (c *Chip) Instances(cell CellID) ([]CellInstID, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return nil, err
	}
	out := make([]CellInstID, 0, len(circ.instances))
	for id := range circ.instances {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// NumInstances returns the number of instances inside the cell.
func (c *Chip) NumInstances(cell CellID) (int, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, err
	}
	return len(circ.instances), nil
}

// Dependencies returns the cells instantiated inside the given cell.
func (c *Chip) Dependencies(cell CellID) ([]CellID, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return nil, err
	}
	return sortedCellIDs(circ.dependencies), nil
}

// DependentCells returns the cells that contain an instance of the given
// cell.
func (c *Chip) DependentCells(cell CellID) ([]CellID, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return nil, err
	}
	return sortedCellIDs(circ.dependents), nil
}

// NumDependencies returns the number of distinct cells instantiated
// inside the given cell.
func (c *Chip) NumDependencies(cell CellID) (int, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, err
	}
	return len(circ.dependencies), nil
}

// NumDependentCells returns the number of distinct cells containing an
// instance of the given cell.
func (c *Chip) NumDependentCells(cell CellID) (int, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, err
	}
	return len(circ.dependents), nil
}

// References returns all instances that use the cell as their template,
// sorted for determinism.
func (c *Chip) References(cell CellID) ([]CellInstID, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return nil, err
	}
	out := make([]CellInstID, 0, len(circ.references))
	for id := range circ.references {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// NumReferences returns the number of instances of the cell.
func (c *Chip) NumReferences(cell CellID) (int, error) {
	circ, err := c.circuit(cell)
	if err != nil {
		return 0, err
	}
	return len(circ.references), nil
}

// IsTopCell reports whether no other cell contains an instance of the
// given cell.
func (c *Chip) IsTopCell(cell CellID) (bool, error) {
	n, err := c.NumDependentCells(cell)
	return n == 0, err
}

// IsLeafCell reports whether the cell contains no instances of other
// cells.
func (c *Chip) IsLeafCell(cell CellID) (bool, error) {
	n, err := c.NumDependencies(cell)
	return n == 0, err
}

// TopCells returns all cells that are not instantiated anywhere.
func (c *Chip) TopCells() []CellID {
	var out []CellID
	for id, circ := range c.circuits {
		if len(circ.dependents) == 0 {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CellsBottomUp returns all cells ordered such that every cell appears
// after all of its dependencies: leaf cells first, top cells last.
func (c *Chip) CellsBottomUp() []CellID {
	visited := make(map[CellID]bool, len(c.circuits))
	out := make([]CellID, 0, len(c.circuits))
	var visit func(CellID)
	visit = func(id CellID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range sortedCellIDs(c.circuits[id].dependencies) {
			visit(dep)
		}
		out = append(out, id)
	}
	for _, id := range c.Cells() {
		visit(id)
	}
	return out
}

// dependsOn reports whether cell transitively depends on target, i.e.
// whether target appears somewhere below cell in the hierarchy.
func (c *Chip) dependsOn(cell, target CellID) bool {
	circ, ok := c.circuits[cell]
	if !ok {
		return false
	}
	for dep := range circ.dependencies {
		if dep == target || c.dependsOn(dep, target) {
			return true
		}
	}
	return false
}

func sortedCellIDs[V any](m map[CellID]V) []CellID {
	out := make([]CellID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func cloneIDSet[K comparable](m map[K]struct{}) map[K]struct{} {
	out := make(map[K]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}
