package meshing

import "strings"

// Sides is a set of face directions.
type Sides uint8

const (
	Top Sides = 1 << iota
	Bottom
	Left     // -X
	Right    // +X
	Forward  // +Z
	Backward // -Z

	AllSides = Top | Bottom | Left | Right | Forward | Backward
)

var sideNames = []struct {
	side Sides
	name string
}{
	{Top, "top"},
	{Bottom, "bottom"},
	{Left, "left"},
	{Right, "right"},
	{Forward, "forward"},
	{Backward, "backward"},
}

func (s Sides) Has(o Sides) bool { return s&o == o }

func (s Sides) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	for _, n := range sideNames {
		if s.Has(n.side) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
