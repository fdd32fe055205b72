package entity

// Color identifies a side. Red always owns the first move of a fresh game.
type Color string

const (
	ColorRed  Color = "red"
	ColorBlue Color = "blue"
)

// Opponent returns the other side.
func (that Color) Opponent() Color {
	if that == ColorRed {
		return ColorBlue
	}
	return ColorRed
}

func (that Color) IsValid() bool {
	return that == ColorRed || that == ColorBlue
}

// Size is one of the three piece sizes.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

// Sizes lists the piece sizes smallest first.
var Sizes = []Size{SizeSmall, SizeMedium, SizeLarge}

var sizeRanks = map[Size]int{
	SizeSmall:  1,
	SizeMedium: 2,
	SizeLarge:  3,
}

// Rank returns the comparable weight of the size; larger rank covers smaller.
func (that Size) Rank() int {
	return sizeRanks[that]
}

func (that Size) IsValid() bool {
	_, ok := sizeRanks[that]
	return ok
}

// Covers reports whether a piece of this size may be stacked on top of a
// piece of the other size. Equal sizes never cover.
func (that Size) Covers(other Size) bool {
	return that.Rank() > other.Rank()
}

// Piece is an immutable colored piece of a given size.
type Piece struct {
	Color Color `json:"color"`
	Size  Size  `json:"size"`
}
