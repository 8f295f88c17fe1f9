package script

import (
	"context"
	"fmt"

	"github.com/risor-io/risor/object"

	libredadb "github.com/pbonh/libreda-db"
	"github.com/pbonh/libreda-db/internal/store"
)

// Host functions wrapping the chip API. Risor scripts cannot hold typed
// IDs, so every function resolves objects by name and returns maps and
// lists of primitives.

func resolveCell(c *libredadb.Chip, arg object.Object) (libredadb.CellID, object.Object) {
	name, err := toString(arg)
	if err != nil {
		return 0, object.Errorf("cell name: %v", err)
	}
	cell, ok := c.CellByName(name)
	if !ok {
		return 0, object.Errorf("cell %q not found", name)
	}
	return cell, nil
}

func makeCellsFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("cells", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("cells", 0, len(args))
		}
		var items []object.Object
		for _, cell := range c.Cells() {
			name, _ := c.CellName(cell)
			items = append(items, object.NewString(name))
		}
		return object.NewList(items)
	})
}

func makePinsFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("pins", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("pins", 1, len(args))
		}
		cell, errObj := resolveCell(c, args[0])
		if errObj != nil {
			return errObj
		}
		pins, err := c.Pins(cell)
		if err != nil {
			return object.Errorf("pins: %v", err)
		}
		var items []object.Object
		for _, pinID := range pins {
			name, _ := c.PinName(pinID)
			dir, _ := c.PinDirection(pinID)
			items = append(items, object.NewMap(map[string]object.Object{
				"name":      object.NewString(name),
				"direction": object.NewString(dir.String()),
			}))
		}
		return object.NewList(items)
	})
}

func makeNetsFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("nets", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("nets", 1, len(args))
		}
		cell, errObj := resolveCell(c, args[0])
		if errObj != nil {
			return errObj
		}
		nets, err := c.Nets(cell)
		if err != nil {
			return object.Errorf("nets: %v", err)
		}
		var items []object.Object
		for _, netID := range nets {
			name, _ := c.NetName(netID)
			if name == "" {
				continue
			}
			items = append(items, object.NewString(name))
		}
		return object.NewList(items)
	})
}

func makeNetTerminalsFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("net_terminals", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("net_terminals", 2, len(args))
		}
		cell, errObj := resolveCell(c, args[0])
		if errObj != nil {
			return errObj
		}
		netName, err := toString(args[1])
		if err != nil {
			return object.Errorf("net_terminals: %v", err)
		}
		netID, ok := c.NetByName(cell, netName)
		if !ok {
			return object.Errorf("net_terminals: net %q not found", netName)
		}
		pins, _ := c.PinsOfNet(netID)
		pinInsts, _ := c.PinInstsOfNet(netID)
		var items []object.Object
		for _, pinID := range pins {
			name, _ := c.PinName(pinID)
			items = append(items, object.NewString(name))
		}
		for _, pi := range pinInsts {
			instID, _ := c.InstanceOfPinInst(pi)
			pinID, _ := c.TemplatePin(pi)
			instName, _ := c.InstanceName(instID)
			pinName, _ := c.PinName(pinID)
			items = append(items, object.NewString(instName+"."+pinName))
		}
		return object.NewList(items)
	})
}

func makeInstancesFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("instances", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("instances", 1, len(args))
		}
		cell, errObj := resolveCell(c, args[0])
		if errObj != nil {
			return errObj
		}
		instances, err := c.Instances(cell)
		if err != nil {
			return object.Errorf("instances: %v", err)
		}
		var items []object.Object
		for _, instID := range instances {
			name, _ := c.InstanceName(instID)
			template, _ := c.TemplateCell(instID)
			templateName, _ := c.CellName(template)
			items = append(items, object.NewMap(map[string]object.Object{
				"name":     object.NewString(name),
				"template": object.NewString(templateName),
			}))
		}
		return object.NewList(items)
	})
}

func makeBBoxFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("bbox", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("bbox", 1, len(args))
		}
		cell, errObj := resolveCell(c, args[0])
		if errObj != nil {
			return errObj
		}
		box, ok, err := c.BoundingBox(cell)
		if err != nil {
			return object.Errorf("bbox: %v", err)
		}
		if !ok {
			return object.Nil
		}
		return object.NewMap(map[string]object.Object{
			"x1": object.NewInt(box.Min.X),
			"y1": object.NewInt(box.Min.Y),
			"x2": object.NewInt(box.Max.X),
			"y2": object.NewInt(box.Max.Y),
		})
	})
}

func makeShapeCountFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("shape_count", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 3 {
			return object.NewArgsError("shape_count", 3, len(args))
		}
		cell, errObj := resolveCell(c, args[0])
		if errObj != nil {
			return errObj
		}
		index, err := toInt64(args[1])
		if err != nil {
			return object.Errorf("shape_count: %v", err)
		}
		datatype, err := toInt64(args[2])
		if err != nil {
			return object.Errorf("shape_count: %v", err)
		}
		layer, ok := c.FindLayer(uint32(index), uint32(datatype))
		if !ok {
			return object.NewInt(0)
		}
		count, err := c.NumShapes(cell, layer)
		if err != nil {
			return object.Errorf("shape_count: %v", err)
		}
		return object.NewInt(int64(count))
	})
}

func makeCreateCellFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("create_cell", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("create_cell", 1, len(args))
		}
		name, err := toString(args[0])
		if err != nil {
			return object.Errorf("create_cell: %v", err)
		}
		if _, err := c.CreateCell(name); err != nil {
			return object.Errorf("create_cell: %v", err)
		}
		return object.Nil
	})
}

func makeCreatePinFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("create_pin", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 3 {
			return object.NewArgsError("create_pin", 3, len(args))
		}
		cell, errObj := resolveCell(c, args[0])
		if errObj != nil {
			return errObj
		}
		name, err := toString(args[1])
		if err != nil {
			return object.Errorf("create_pin: %v", err)
		}
		dir, err := toString(args[2])
		if err != nil {
			return object.Errorf("create_pin: %v", err)
		}
		if _, err := c.CreatePin(cell, name, libredadb.DirectionFromString(dir)); err != nil {
			return object.Errorf("create_pin: %v", err)
		}
		return object.Nil
	})
}

func makeCreateNetFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("create_net", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("create_net", 2, len(args))
		}
		cell, errObj := resolveCell(c, args[0])
		if errObj != nil {
			return errObj
		}
		name, err := toString(args[1])
		if err != nil {
			return object.Errorf("create_net: %v", err)
		}
		if _, err := c.CreateNet(cell, name); err != nil {
			return object.Errorf("create_net: %v", err)
		}
		return object.Nil
	})
}

func makeCreateInstanceFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("create_instance", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 3 {
			return object.NewArgsError("create_instance", 3, len(args))
		}
		parent, errObj := resolveCell(c, args[0])
		if errObj != nil {
			return errObj
		}
		template, errObj := resolveCell(c, args[1])
		if errObj != nil {
			return errObj
		}
		name, err := toString(args[2])
		if err != nil {
			return object.Errorf("create_instance: %v", err)
		}
		if _, err := c.CreateInstance(parent, template, name); err != nil {
			return object.Errorf("create_instance: %v", err)
		}
		return object.Nil
	})
}

func makeConnectPinFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("connect_pin", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 3 {
			return object.NewArgsError("connect_pin", 3, len(args))
		}
		cell, errObj := resolveCell(c, args[0])
		if errObj != nil {
			return errObj
		}
		pinName, err := toString(args[1])
		if err != nil {
			return object.Errorf("connect_pin: %v", err)
		}
		netName, err := toString(args[2])
		if err != nil {
			return object.Errorf("connect_pin: %v", err)
		}
		pinID, ok := c.PinByName(cell, pinName)
		if !ok {
			return object.Errorf("connect_pin: pin %q not found", pinName)
		}
		netID, ok := c.NetByName(cell, netName)
		if !ok {
			return object.Errorf("connect_pin: net %q not found", netName)
		}
		if _, err := c.ConnectPin(pinID, netID); err != nil {
			return object.Errorf("connect_pin: %v", err)
		}
		return object.Nil
	})
}

func makeConnectPinInstFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("connect_pin_inst", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 4 {
			return object.NewArgsError("connect_pin_inst", 4, len(args))
		}
		cell, errObj := resolveCell(c, args[0])
		if errObj != nil {
			return errObj
		}
		instName, err := toString(args[1])
		if err != nil {
			return object.Errorf("connect_pin_inst: %v", err)
		}
		pinName, err := toString(args[2])
		if err != nil {
			return object.Errorf("connect_pin_inst: %v", err)
		}
		netName, err := toString(args[3])
		if err != nil {
			return object.Errorf("connect_pin_inst: %v", err)
		}
		instID, ok := c.InstanceByName(cell, instName)
		if !ok {
			return object.Errorf("connect_pin_inst: instance %q not found", instName)
		}
		template, _ := c.TemplateCell(instID)
		pinID, ok := c.PinByName(template, pinName)
		if !ok {
			return object.Errorf("connect_pin_inst: pin %q not found", pinName)
		}
		position, _ := c.PinPosition(pinID)
		pi, err := c.PinInstAt(instID, position)
		if err != nil {
			return object.Errorf("connect_pin_inst: %v", err)
		}
		netID, ok := c.NetByName(cell, netName)
		if !ok {
			return object.Errorf("connect_pin_inst: net %q not found", netName)
		}
		if _, err := c.ConnectPinInst(pi, netID); err != nil {
			return object.Errorf("connect_pin_inst: %v", err)
		}
		return object.Nil
	})
}

func makeInsertRectFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("insert_rect", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 7 {
			return object.NewArgsError("insert_rect", 7, len(args))
		}
		cell, errObj := resolveCell(c, args[0])
		if errObj != nil {
			return errObj
		}
		vals := make([]int64, 6)
		for i := 0; i < 6; i++ {
			v, err := toInt64(args[i+1])
			if err != nil {
				return object.Errorf("insert_rect: %v", err)
			}
			vals[i] = v
		}
		layer := c.CreateLayer(uint32(vals[0]), uint32(vals[1]))
		rect := libredadb.RectOf(vals[2], vals[3], vals[4], vals[5])
		if _, err := c.InsertShape(cell, layer, rect); err != nil {
			return object.Errorf("insert_rect: %v", err)
		}
		return object.Nil
	})
}

func makeFlattenFn(c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("flatten", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("flatten", 2, len(args))
		}
		cell, errObj := resolveCell(c, args[0])
		if errObj != nil {
			return errObj
		}
		instName, err := toString(args[1])
		if err != nil {
			return object.Errorf("flatten: %v", err)
		}
		instID, ok := c.InstanceByName(cell, instName)
		if !ok {
			return object.Errorf("flatten: instance %q not found", instName)
		}
		if err := c.FlattenInstance(instID); err != nil {
			return object.Errorf("flatten: %v", err)
		}
		return object.Nil
	})
}

func makeSaveFn(s *store.Store, c *libredadb.Chip) *object.Builtin {
	return object.NewBuiltin("save", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("save", 0, len(args))
		}
		if err := s.Save(c); err != nil {
			return object.Errorf("save: %v", err)
		}
		return object.Nil
	})
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}

func toInt64(obj object.Object) (int64, error) {
	if i, ok := obj.(*object.Int); ok {
		return i.Value(), nil
	}
	if f, ok := obj.(*object.Float); ok {
		return int64(f.Value()), nil
	}
	return 0, fmt.Errorf("expected int, got %s", obj.Type())
}
