package entity

const (
	MovePlace    = "place"
	MoveRelocate = "relocate"
)

// Move is a tagged union discriminated by Type: a placement consumes a piece
// of Size from the mover's reserve at (Row, Col); a relocation moves the top
// piece of (FromRow, FromCol) to (ToRow, ToCol).
//
// Color and, for relocations, Size are annotations filled in when the move is
// applied, so a history entry carries the full picture of what moved.
type Move struct {
	Type string `json:"type"`

	Row  int  `json:"row,omitempty"`
	Col  int  `json:"col,omitempty"`
	Size Size `json:"size,omitempty"`

	FromRow int `json:"fromRow,omitempty"`
	FromCol int `json:"fromCol,omitempty"`
	ToRow   int `json:"toRow,omitempty"`
	ToCol   int `json:"toCol,omitempty"`

	Color Color `json:"color,omitempty"`
}

// NewPlacement builds a placement move.
func NewPlacement(row, col int, size Size) Move {
	return Move{Type: MovePlace, Row: row, Col: col, Size: size}
}

// NewRelocation builds a relocation move.
func NewRelocation(fromRow, fromCol, toRow, toCol int) Move {
	return Move{Type: MoveRelocate, FromRow: fromRow, FromCol: fromCol, ToRow: toRow, ToCol: toCol}
}

func (that *Move) IsPlacement() bool {
	return that.Type == MovePlace
}

func (that *Move) IsRelocation() bool {
	return that.Type == MoveRelocate
}

// Destination returns the cell the move lands on.
func (that *Move) Destination() (int, int) {
	if that.IsPlacement() {
		return that.Row, that.Col
	}
	return that.ToRow, that.ToCol
}

// MoveRecord is one append-only history entry. StateAfter is a full snapshot
// rather than a delta, so replay and scrubbing are a direct index away.
type MoveRecord struct {
	Step       int        `json:"step"`
	Player     Color      `json:"player"`
	Move       Move       `json:"move"`
	Captured   *Piece     `json:"capturedPiece,omitempty"`
	StateAfter *GameState `json:"gameStateAfter"`
}

// History is the ordered log of move records for one game.
type History []MoveRecord

// Append adds a record for the move that produced stateAfter.
func (that History) Append(player Color, move Move, captured *Piece, stateAfter *GameState) History {
	return append(that, MoveRecord{
		Step:       len(that) + 1,
		Player:     player,
		Move:       move,
		Captured:   captured,
		StateAfter: stateAfter,
	})
}
