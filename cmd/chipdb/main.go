// Command chipdb inspects and manipulates chip layout/netlist databases
// stored in SQLite, with JSON interchange and Risor scripting.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	libredadb "github.com/pbonh/libreda-db"
	"github.com/pbonh/libreda-db/internal/store"
)

var (
	flagDB     string
	flagFormat string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "chipdb",
	Short:         "Chip layout and netlist database",
	Long:          "Chipdb stores chip cell hierarchies, netlists and layout geometry in a SQLite database and offers queries, JSON interchange and Risor scripting on top.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "chip.db", "database path")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cellsCmd)
	rootCmd.AddCommand(cellCmd)
	rootCmd.AddCommand(netCmd)
	rootCmd.AddCommand(regionCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(runCmd)
}

// openStore opens the SQLite database named by --db and ensures the
// schema exists.
func openStore() (*store.Store, error) {
	s, err := store.NewStore(flagDB)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", flagDB, err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// loadChip opens the database and loads the full chip into memory.
func loadChip() (*libredadb.Chip, *store.Store, error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	c, err := s.Load()
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("loading %s: %w", flagDB, err)
	}
	return c, s, nil
}

// outputResult writes a result in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so
// RunE can propagate it to Cobra. In JSON mode the error is written to
// stdout as a CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}
