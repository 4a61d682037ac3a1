package terrain

// Block is the material of a column's surface cell.
type Block uint8

const (
	Air Block = iota
	Bedrock
	Stone
	Dirt
	Grass
	Sand
	Snow
)

var blockNames = [...]string{
	Air:     "air",
	Bedrock: "bedrock",
	Stone:   "stone",
	Dirt:    "dirt",
	Grass:   "grass",
	Sand:    "sand",
	Snow:    "snow",
}

func (b Block) String() string {
	if int(b) < len(blockNames) {
		return blockNames[b]
	}
	return "unknown"
}

// Color returns the block's flat vertex color.
func (b Block) Color() [3]float32 {
	switch b {
	case Bedrock:
		return [3]float32{0.2, 0.2, 0.22}
	case Stone:
		return [3]float32{0.5, 0.5, 0.52}
	case Dirt:
		return [3]float32{0.45, 0.32, 0.2}
	case Grass:
		return [3]float32{0.3, 0.6, 0.25}
	case Sand:
		return [3]float32{0.86, 0.8, 0.55}
	case Snow:
		return [3]float32{0.95, 0.95, 0.97}
	default:
		return [3]float32{1, 0, 1}
	}
}
