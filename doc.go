// Package libredadb is an in-memory database for VLSI physical design.
// The core component is the Chip: a combined representation of a chip
// layout (layers, shapes, cell placement) and its netlist (circuits,
// pins, nets, instances), sharing one cell hierarchy.
//
// Capabilities that not every consumer needs are layered on top of the
// core instead of built into it: RegionSearch adds R-tree backed spatial
// queries, Notifier adds change-notification callbacks, and UndoStack
// adds reversible editing. The internal/store package persists a Chip to
// SQLite and the internal/script package runs Risor scripts against an
// open chip.
package libredadb
