package main

// CLIResult is the top-level JSON envelope for all query commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIStats summarizes a chip database.
type CLIStats struct {
	DBU         int64  `json:"dbu"`
	Cells       int    `json:"cells"`
	TopCells    int    `json:"top_cells"`
	Layers      int    `json:"layers"`
	Nets        int    `json:"nets"`
	Pins        int    `json:"pins"`
	Instances   int    `json:"instances"`
	Shapes      int    `json:"shapes"`
	ContentHash string `json:"content_hash"`
}

// CLICell is a JSON-friendly cell summary.
type CLICell struct {
	Name       string `json:"name"`
	Pins       int    `json:"pins"`
	Nets       int    `json:"nets"`
	Instances  int    `json:"instances"`
	References int    `json:"references"`
	IsTop      bool   `json:"is_top"`
	IsLeaf     bool   `json:"is_leaf"`
}

// CLIPin is a JSON-friendly pin representation.
type CLIPin struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Net       string `json:"net,omitempty"`
}

// CLIInstance is a JSON-friendly cell instance representation.
type CLIInstance struct {
	Name     string `json:"name"`
	Template string `json:"template"`
	X        int64  `json:"x"`
	Y        int64  `json:"y"`
	Rotation int    `json:"rotation"`
	Mirror   bool   `json:"mirror"`
}

// CLICellDetail is the full view of one cell.
type CLICellDetail struct {
	Name      string        `json:"name"`
	Pins      []CLIPin      `json:"pins"`
	Nets      []string      `json:"nets"`
	Instances []CLIInstance `json:"instances"`
	BBox      *CLIBox       `json:"bbox,omitempty"`
}

// CLIBox is a JSON-friendly rectangle.
type CLIBox struct {
	X1 int64 `json:"x1"`
	Y1 int64 `json:"y1"`
	X2 int64 `json:"x2"`
	Y2 int64 `json:"y2"`
}

// CLITerminal is one connection point of a net.
type CLITerminal struct {
	Kind     string `json:"kind"` // "pin" or "pin_instance"
	Pin      string `json:"pin"`
	Instance string `json:"instance,omitempty"`
}

// CLIShape is a JSON-friendly shape found by a region query.
type CLIShape struct {
	ID   uint32 `json:"id"`
	Kind string `json:"kind"`
	BBox CLIBox `json:"bbox"`
	Net  string `json:"net,omitempty"`
	Pin  string `json:"pin,omitempty"`
}
