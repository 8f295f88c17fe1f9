package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	libredadb "github.com/pbonh/libreda-db"
	"github.com/pbonh/libreda-db/internal/script"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the chip database",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	c, s, err := loadChip()
	if err != nil {
		return outputError("stats", err)
	}
	defer s.Close()

	stats := CLIStats{
		DBU:         c.DBU(),
		Cells:       c.NumCells(),
		TopCells:    len(c.TopCells()),
		Layers:      len(c.Layers()),
		ContentHash: fmt.Sprintf("%016x", c.ChipHash()),
	}
	for _, cell := range c.Cells() {
		n, _ := c.NumNets(cell)
		stats.Nets += n
		n, _ = c.NumPins(cell)
		stats.Pins += n
		n, _ = c.NumInstances(cell)
		stats.Instances += n
		for _, layer := range c.Layers() {
			n, _ = c.NumShapes(cell, layer)
			stats.Shapes += n
		}
	}
	return outputResult(CLIResult{Command: "stats", Results: stats})
}

var cellsCmd = &cobra.Command{
	Use:   "cells",
	Short: "List all cells",
	Args:  cobra.NoArgs,
	RunE:  runCells,
}

func runCells(cmd *cobra.Command, args []string) error {
	c, s, err := loadChip()
	if err != nil {
		return outputError("cells", err)
	}
	defer s.Close()

	var cells []CLICell
	for _, cell := range c.Cells() {
		name, _ := c.CellName(cell)
		pins, _ := c.NumPins(cell)
		nets, _ := c.NumNets(cell)
		instances, _ := c.NumInstances(cell)
		references, _ := c.NumReferences(cell)
		isTop, _ := c.IsTopCell(cell)
		isLeaf, _ := c.IsLeafCell(cell)
		cells = append(cells, CLICell{
			Name:       name,
			Pins:       pins,
			Nets:       nets,
			Instances:  instances,
			References: references,
			IsTop:      isTop,
			IsLeaf:     isLeaf,
		})
	}
	return outputResult(CLIResult{Command: "cells", Results: cells})
}

var cellCmd = &cobra.Command{
	Use:   "cell <name>",
	Short: "Show one cell in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runCell,
}

func runCell(cmd *cobra.Command, args []string) error {
	c, s, err := loadChip()
	if err != nil {
		return outputError("cell", err)
	}
	defer s.Close()

	cell, ok := c.CellByName(args[0])
	if !ok {
		return outputError("cell", fmt.Errorf("cell %q not found", args[0]))
	}

	detail := CLICellDetail{Name: args[0]}
	pins, _ := c.Pins(cell)
	for _, pinID := range pins {
		name, _ := c.PinName(pinID)
		dir, _ := c.PinDirection(pinID)
		p := CLIPin{Name: name, Direction: dir.String()}
		if netID, _ := c.NetOfPin(pinID); netID != 0 {
			p.Net, _ = c.NetName(netID)
		}
		detail.Pins = append(detail.Pins, p)
	}
	nets, _ := c.Nets(cell)
	for _, netID := range nets {
		if name, _ := c.NetName(netID); name != "" {
			detail.Nets = append(detail.Nets, name)
		}
	}
	instances, _ := c.Instances(cell)
	for _, instID := range instances {
		name, _ := c.InstanceName(instID)
		template, _ := c.TemplateCell(instID)
		templateName, _ := c.CellName(template)
		tf, _ := c.InstanceTransform(instID)
		detail.Instances = append(detail.Instances, CLIInstance{
			Name:     name,
			Template: templateName,
			X:        tf.Displacement.X,
			Y:        tf.Displacement.Y,
			Rotation: tf.Rotation,
			Mirror:   tf.Mirror,
		})
	}
	if box, ok, _ := c.BoundingBox(cell); ok {
		detail.BBox = &CLIBox{X1: box.Min.X, Y1: box.Min.Y, X2: box.Max.X, Y2: box.Max.Y}
	}
	return outputResult(CLIResult{Command: "cell", Results: detail})
}

var netCmd = &cobra.Command{
	Use:   "net <cell> <net>",
	Short: "List the terminals of a net",
	Args:  cobra.ExactArgs(2),
	RunE:  runNet,
}

func runNet(cmd *cobra.Command, args []string) error {
	c, s, err := loadChip()
	if err != nil {
		return outputError("net", err)
	}
	defer s.Close()

	cell, ok := c.CellByName(args[0])
	if !ok {
		return outputError("net", fmt.Errorf("cell %q not found", args[0]))
	}
	netID, ok := c.NetByName(cell, args[1])
	if !ok {
		return outputError("net", fmt.Errorf("net %q not found in %q", args[1], args[0]))
	}

	var terms []CLITerminal
	pins, _ := c.PinsOfNet(netID)
	for _, pinID := range pins {
		name, _ := c.PinName(pinID)
		terms = append(terms, CLITerminal{Kind: "pin", Pin: name})
	}
	pinInsts, _ := c.PinInstsOfNet(netID)
	for _, pi := range pinInsts {
		instID, _ := c.InstanceOfPinInst(pi)
		pinID, _ := c.TemplatePin(pi)
		instName, _ := c.InstanceName(instID)
		pinName, _ := c.PinName(pinID)
		terms = append(terms, CLITerminal{Kind: "pin_instance", Instance: instName, Pin: pinName})
	}
	return outputResult(CLIResult{Command: "net", Results: terms})
}

var regionCmd = &cobra.Command{
	Use:   "region <cell> <layer> <datatype> <x1> <y1> <x2> <y2>",
	Short: "Find shapes intersecting a rectangle",
	Args:  cobra.ExactArgs(7),
	RunE:  runRegion,
}

func runRegion(cmd *cobra.Command, args []string) error {
	c, s, err := loadChip()
	if err != nil {
		return outputError("region", err)
	}
	defer s.Close()

	cell, ok := c.CellByName(args[0])
	if !ok {
		return outputError("region", fmt.Errorf("cell %q not found", args[0]))
	}
	nums := make([]int64, 6)
	for i := 0; i < 6; i++ {
		nums[i], err = strconv.ParseInt(args[i+1], 10, 64)
		if err != nil {
			return outputError("region", fmt.Errorf("parsing %q: %w", args[i+1], err))
		}
	}
	layer, ok := c.FindLayer(uint32(nums[0]), uint32(nums[1]))
	if !ok {
		return outputError("region", fmt.Errorf("layer %d/%d not found", nums[0], nums[1]))
	}

	rs := libredadb.NewRegionSearch(c)
	query := libredadb.RectOf(nums[2], nums[3], nums[4], nums[5])
	found, err := rs.ShapesInRegion(cell, layer, query)
	if err != nil {
		return outputError("region", err)
	}

	var shapes []CLIShape
	for _, shapeID := range found {
		g, _ := c.ShapeGeometry(shapeID)
		box, _ := g.BoundingBox()
		cs := CLIShape{
			ID:   uint32(shapeID),
			Kind: g.GeometryKind(),
			BBox: CLIBox{X1: box.Min.X, Y1: box.Min.Y, X2: box.Max.X, Y2: box.Max.Y},
		}
		if netID, _ := c.ShapeNet(shapeID); netID != 0 {
			cs.Net, _ = c.NetName(netID)
		}
		if pinID, _ := c.ShapePin(shapeID); pinID != 0 {
			cs.Pin, _ = c.PinName(pinID)
		}
		shapes = append(shapes, cs)
	}
	return outputResult(CLIResult{Command: "region", Results: shapes})
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the chip as JSON",
	Long:  "Writes the whole chip database as a JSON document, to stdout or to the given file.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	c, s, err := loadChip()
	if err != nil {
		return outputError("export", err)
	}
	defer s.Close()

	out := os.Stdout
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return outputError("export", err)
		}
		defer f.Close()
		out = f
	}
	if err := c.ExportJSON(out); err != nil {
		return outputError("export", err)
	}
	return nil
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON chip document into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return outputError("import", err)
	}
	defer f.Close()

	c, err := libredadb.ImportJSON(f)
	if err != nil {
		return outputError("import", err)
	}
	s, err := openStore()
	if err != nil {
		return outputError("import", err)
	}
	defer s.Close()
	if err := s.Save(c); err != nil {
		return outputError("import", err)
	}
	fmt.Fprintf(os.Stderr, "Imported %d cells into %s\n", c.NumCells(), flagDB)
	return nil
}

var flagScriptSave bool

var runCmd = &cobra.Command{
	Use:   "run <script.risor>",
	Short: "Run a Risor script against the chip",
	Long:  "Loads the chip, executes the script with the chip host functions in scope, and optionally saves the result back.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScript,
}

func init() {
	runCmd.Flags().BoolVar(&flagScriptSave, "save", false, "save the chip back to the database after the script finishes")
}

func runScript(cmd *cobra.Command, args []string) error {
	c, s, err := loadChip()
	if err != nil {
		return outputError("run", err)
	}
	defer s.Close()

	rt := script.NewRuntime(c, script.WithStore(s))
	if err := rt.RunScript(context.Background(), args[0], nil); err != nil {
		return outputError("run", err)
	}
	if flagScriptSave {
		if err := s.Save(c); err != nil {
			return outputError("run", err)
		}
	}
	return nil
}
