package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// formatStatsText formats CLIStats as readable text.
func formatStatsText(w io.Writer, stats CLIStats) {
	fmt.Fprintln(w, "Chip Summary")
	fmt.Fprintln(w, "============")
	fmt.Fprintf(w, "DBU: %d units/um\n", stats.DBU)
	fmt.Fprintf(w, "Cells: %d (%d top)\n", stats.Cells, stats.TopCells)
	fmt.Fprintf(w, "Layers: %d\n", stats.Layers)
	fmt.Fprintf(w, "Nets: %d\n", stats.Nets)
	fmt.Fprintf(w, "Pins: %d\n", stats.Pins)
	fmt.Fprintf(w, "Instances: %d\n", stats.Instances)
	fmt.Fprintf(w, "Shapes: %d\n", stats.Shapes)
	fmt.Fprintf(w, "Content hash: %s\n", stats.ContentHash)
}

// formatCellsText formats CLICell results as aligned columns.
func formatCellsText(w io.Writer, cells []CLICell) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPINS\tNETS\tINSTANCES\tREFERENCES\tKIND")
	for _, c := range cells {
		kind := ""
		if c.IsTop {
			kind = "top"
		}
		if c.IsLeaf {
			if kind != "" {
				kind += ",leaf"
			} else {
				kind = "leaf"
			}
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n",
			c.Name, c.Pins, c.Nets, c.Instances, c.References, kind)
	}
	tw.Flush()
}

// formatCellDetailText formats one cell as readable text.
func formatCellDetailText(w io.Writer, detail CLICellDetail) {
	fmt.Fprintf(w, "Cell: %s\n", detail.Name)
	if detail.BBox != nil {
		fmt.Fprintf(w, "BBox: (%d, %d) .. (%d, %d)\n",
			detail.BBox.X1, detail.BBox.Y1, detail.BBox.X2, detail.BBox.Y2)
	}
	if len(detail.Pins) > 0 {
		fmt.Fprintln(w, "\nPins:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  NAME\tDIRECTION\tNET")
		for _, p := range detail.Pins {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.Name, p.Direction, p.Net)
		}
		tw.Flush()
	}
	if len(detail.Nets) > 0 {
		fmt.Fprintf(w, "\nNets: %s\n", strings.Join(detail.Nets, ", "))
	}
	if len(detail.Instances) > 0 {
		fmt.Fprintln(w, "\nInstances:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  NAME\tTEMPLATE\tPLACEMENT")
		for _, inst := range detail.Instances {
			placement := fmt.Sprintf("(%d, %d) r%d", inst.X, inst.Y, inst.Rotation*90)
			if inst.Mirror {
				placement += " mirrored"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", inst.Name, inst.Template, placement)
		}
		tw.Flush()
	}
}

// formatTerminalsText formats CLITerminal results as aligned columns.
func formatTerminalsText(w io.Writer, terms []CLITerminal) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tINSTANCE\tPIN")
	for _, t := range terms {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Kind, t.Instance, t.Pin)
	}
	tw.Flush()
}

// formatShapesText formats CLIShape results as aligned columns.
func formatShapesText(w io.Writer, shapes []CLIShape) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tBBOX\tNET\tPIN")
	for _, s := range shapes {
		box := fmt.Sprintf("(%d, %d)..(%d, %d)", s.BBox.X1, s.BBox.Y1, s.BBox.X2, s.BBox.Y2)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Kind, box, s.Net, s.Pin)
	}
	tw.Flush()
}

// outputResultText dispatches to the appropriate text formatter based on
// the result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	w := io.Writer(os.Stdout)
	switch v := result.Results.(type) {
	case CLIStats:
		formatStatsText(w, v)
	case []CLICell:
		formatCellsText(w, v)
	case CLICellDetail:
		formatCellDetailText(w, v)
	case []CLITerminal:
		formatTerminalsText(w, v)
	case []CLIShape:
		formatShapesText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
