package entity

// BoardSize is the edge length of the square board.
const BoardSize = 3

// InitialPiecesPerSize is how many pieces of each size a side starts with.
const InitialPiecesPerSize = 2

// Cell is a stack of pieces in bottom-to-top insertion order. Only the top
// piece is visible; covered pieces stay buried for the rest of the game.
type Cell []Piece

// Top returns the visible piece of the cell, if any.
func (that Cell) Top() (Piece, bool) {
	if len(that) == 0 {
		return Piece{}, false
	}
	return that[len(that)-1], true
}

func (that Cell) IsEmpty() bool {
	return len(that) == 0
}

// Board is the fixed 3x3 grid of cells.
type Board [BoardSize][BoardSize]Cell

// InBounds reports whether the coordinates address a cell on the board.
func (that *Board) InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// Reserve is one color's pool of not-yet-placed pieces, by size. Counts only
// ever decrease; there are no take-backs.
type Reserve struct {
	Small  int `json:"small"`
	Medium int `json:"medium"`
	Large  int `json:"large"`
}

func (that *Reserve) Count(size Size) int {
	switch size {
	case SizeSmall:
		return that.Small
	case SizeMedium:
		return that.Medium
	case SizeLarge:
		return that.Large
	default:
		return 0
	}
}

// Take removes one piece of the given size from the reserve.
func (that *Reserve) Take(size Size) {
	switch size {
	case SizeSmall:
		that.Small--
	case SizeMedium:
		that.Medium--
	case SizeLarge:
		that.Large--
	}
}

// Total is the number of pieces left in the reserve across all sizes.
func (that *Reserve) Total() int {
	return that.Small + that.Medium + that.Large
}

func newReserve() Reserve {
	return Reserve{
		Small:  InitialPiecesPerSize,
		Medium: InitialPiecesPerSize,
		Large:  InitialPiecesPerSize,
	}
}

// Reserves holds both sides' pools.
type Reserves struct {
	Red  Reserve `json:"red"`
	Blue Reserve `json:"blue"`
}

// GameState is one immutable snapshot of a game. Transitions never mutate an
// existing snapshot; they clone it first, so history entries can alias older
// snapshots safely.
type GameState struct {
	Board         Board    `json:"board"`
	Reserves      Reserves `json:"reserves"`
	CurrentPlayer Color    `json:"currentPlayer"`
	Winner        Color    `json:"winner,omitempty"`
}

// NewGameState returns a fresh game with full reserves and red to move.
func NewGameState() *GameState {
	return NewGameStateWithStarter(ColorRed)
}

// NewGameStateWithStarter returns a fresh game where the given color moves
// first. Used by the rematch fairness rule (loser of the prior game starts).
func NewGameStateWithStarter(starter Color) *GameState {
	return &GameState{
		Reserves:      Reserves{Red: newReserve(), Blue: newReserve()},
		CurrentPlayer: starter,
	}
}

// Clone returns a deep copy; cell stacks are copied so no nested container
// is shared between snapshots.
func (that *GameState) Clone() *GameState {
	next := &GameState{
		Reserves:      that.Reserves,
		CurrentPlayer: that.CurrentPlayer,
		Winner:        that.Winner,
	}

	for row := range that.Board {
		for col := range that.Board[row] {
			cell := that.Board[row][col]
			if len(cell) == 0 {
				continue
			}
			copied := make(Cell, len(cell))
			copy(copied, cell)
			next.Board[row][col] = copied
		}
	}

	return next
}

// ReserveOf returns a pointer into this snapshot's reserve for the color.
func (that *GameState) ReserveOf(color Color) *Reserve {
	if color == ColorRed {
		return &that.Reserves.Red
	}
	return &that.Reserves.Blue
}

func (that *GameState) HasWinner() bool {
	return that.Winner != ""
}
