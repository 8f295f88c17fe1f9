package libredadb

import "fmt"

// flattenSeparator joins path elements when flattening produces
// qualified names, e.g. "u1:n3" for net n3 of instance u1.
const flattenSeparator = ":"

// FlattenInstance inlines one cell instance into its parent: the
// template's child instances and shapes are copied (transformed) into
// the parent, nets are reconnected across the former cell boundary, and
// the instance itself is removed. The template cell is left untouched.
//
// Copied objects get qualified names ("<inst>:<name>") where both names
// exist; on a name collision the copy becomes anonymous.
func (c *Chip) FlattenInstance(instID CellInstID) error {
	inst, err := c.instance(instID)
	if err != nil {
		return fmt.Errorf("flatten instance: %w", err)
	}
	parent := c.circuits[inst.parent]
	template := c.circuits[inst.template]

	qualify := func(name string) string {
		if inst.name == "" || name == "" {
			return ""
		}
		return inst.name + flattenSeparator + name
	}

	// Map every net of the template to a net in the parent.
	netMap := make(map[NetID]NetID, len(template.nets))
	netMap[template.netLow] = parent.netLow
	netMap[template.netHigh] = parent.netHigh
	for netID := range template.nets {
		if _, done := netMap[netID]; done {
			continue
		}
		n := c.nets[netID]

		// A net touching a template pin continues as the net connected
		// to the matching pin instance on the outside.
		mapped := NetID(0)
		for pinID := range n.pins {
			pos := c.pins[pinID].position
			if outer := c.pinInsts[inst.pins[pos]].net; outer != 0 {
				mapped = outer
				break
			}
		}
		if mapped == 0 {
			// Purely internal net: recreate it in the parent.
			mapped, err = c.CreateNet(inst.parent, qualify(n.name))
			if err != nil {
				mapped, _ = c.CreateNet(inst.parent, "")
			}
		}
		netMap[netID] = mapped
	}

	// Copy child instances.
	for childID := range cloneIDSet(template.instances) {
		child := c.instances[childID]
		copyID, err := c.CreateInstance(inst.parent, child.template, qualify(child.name))
		if err != nil {
			copyID, err = c.CreateInstance(inst.parent, child.template, "")
			if err != nil {
				return fmt.Errorf("flatten instance: copy %q: %w", child.name, err)
			}
		}
		if _, err := c.SetInstanceTransform(copyID, child.transform.Then(inst.transform)); err != nil {
			return fmt.Errorf("flatten instance: %w", err)
		}
		// Reconnect the copy's pin instances to the mapped nets.
		for pos, piID := range child.pins {
			netID := c.pinInsts[piID].net
			if netID == 0 {
				continue
			}
			copyPi, err := c.PinInstAt(copyID, pos)
			if err != nil {
				return fmt.Errorf("flatten instance: %w", err)
			}
			if _, err := c.ConnectPinInst(copyPi, netMap[netID]); err != nil {
				return fmt.Errorf("flatten instance: %w", err)
			}
		}
	}

	// Copy shapes, transformed into parent coordinates.
	for layer, layerShapes := range template.shapes {
		for shapeID, g := range layerShapes {
			copyID, err := c.InsertShape(inst.parent, layer, g.Transformed(inst.transform))
			if err != nil {
				return fmt.Errorf("flatten instance: copy shape: %w", err)
			}
			if netID := c.shapeNets[shapeID]; netID != 0 {
				if mapped, ok := netMap[netID]; ok {
					if _, err := c.SetShapeNet(copyID, mapped); err != nil {
						return fmt.Errorf("flatten instance: %w", err)
					}
				}
			}
		}
	}

	return c.RemoveInstance(instID)
}
