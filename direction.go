package libredadb

// Direction is the signal direction of a pin.
type Direction int

const (
	// DirectionNone marks a pin without a known direction.
	DirectionNone Direction = iota
	// DirectionInput marks an input pin.
	DirectionInput
	// DirectionOutput marks an output pin.
	DirectionOutput
	// DirectionInOut marks a bidirectional pin.
	DirectionInOut
	// DirectionClock marks a clock input.
	DirectionClock
	// DirectionSupply marks a power supply pin.
	DirectionSupply
	// DirectionGround marks a ground pin.
	DirectionGround
)

// IsInput reports whether the direction is Input.
func (d Direction) IsInput() bool { return d == DirectionInput }

// IsOutput reports whether the direction is Output.
func (d Direction) IsOutput() bool { return d == DirectionOutput }

func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "input"
	case DirectionOutput:
		return "output"
	case DirectionInOut:
		return "inout"
	case DirectionClock:
		return "clock"
	case DirectionSupply:
		return "supply"
	case DirectionGround:
		return "ground"
	default:
		return "none"
	}
}

// DirectionFromString parses the textual form produced by String.
// Unknown strings map to DirectionNone.
func DirectionFromString(s string) Direction {
	switch s {
	case "input":
		return DirectionInput
	case "output":
		return DirectionOutput
	case "inout":
		return DirectionInOut
	case "clock":
		return DirectionClock
	case "supply":
		return DirectionSupply
	case "ground":
		return DirectionGround
	default:
		return DirectionNone
	}
}
