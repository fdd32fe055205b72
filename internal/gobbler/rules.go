// Package gobbler implements the rules of stacking tic-tac-toe as pure
// functions over entity.GameState. The same rules run on the server for
// online play and inside the bot for local play, so nothing here does I/O and
// nothing mutates its inputs: appliers clone the state and return the next
// snapshot.
package gobbler

import (
	"fmt"

	"github.com/rocketscienceinc/gobbler-backend/internal/apperror"
	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
)

// winLines enumerates every winning line in the order the winner scan walks
// them: rows top to bottom, then columns left to right, then both diagonals.
var winLines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// ValidatePlacement checks whether color may place a reserve piece of size at
// (row, col). The checks run in rule order: turn, reserve, then the covering
// rules against the destination's top piece.
func ValidatePlacement(state *entity.GameState, row, col int, color entity.Color, size entity.Size) error {
	if !state.Board.InBounds(row, col) {
		return fmt.Errorf("%w: (%d,%d)", apperror.ErrCellOutOfRange, row, col)
	}

	if color != state.CurrentPlayer {
		return apperror.ErrNotYourTurn
	}

	if state.ReserveOf(color).Count(size) <= 0 {
		return apperror.ErrPieceExhausted
	}

	return validateCovering(state.Board[row][col], color, size)
}

// ValidateRelocation checks whether the current player may move the top piece
// of the source cell onto the destination cell.
func ValidateRelocation(state *entity.GameState, fromRow, fromCol, toRow, toCol int) error {
	if !state.Board.InBounds(fromRow, fromCol) || !state.Board.InBounds(toRow, toCol) {
		return fmt.Errorf("%w: (%d,%d)->(%d,%d)", apperror.ErrCellOutOfRange, fromRow, fromCol, toRow, toCol)
	}

	if fromRow == toRow && fromCol == toCol {
		return apperror.ErrSameCell
	}

	moving, ok := state.Board[fromRow][fromCol].Top()
	if !ok {
		return apperror.ErrEmptySourceCell
	}

	if moving.Color != state.CurrentPlayer {
		return apperror.ErrNotYourTurn
	}

	return validateCovering(state.Board[toRow][toCol], moving.Color, moving.Size)
}

// validateCovering applies the stacking rules shared by placement and
// relocation: an empty cell always accepts; otherwise the incoming piece must
// be an opposing color and strictly larger than the visible piece.
func validateCovering(target entity.Cell, color entity.Color, size entity.Size) error {
	top, ok := target.Top()
	if !ok {
		return nil
	}

	if top.Color == color {
		return apperror.ErrCoverOwnPiece
	}

	if size.Rank() == top.Size.Rank() {
		return apperror.ErrCoverSameSize
	}

	if !size.Covers(top.Size) {
		return apperror.ErrCoverSmallerPiece
	}

	return nil
}

// ApplyPlacement assumes the placement already validated. It returns the next
// snapshot plus the piece that got covered, if any.
func ApplyPlacement(state *entity.GameState, row, col int, size entity.Size) (*entity.GameState, *entity.Piece) {
	next := state.Clone()
	mover := next.CurrentPlayer

	captured := topOf(next.Board[row][col])

	next.Board[row][col] = append(next.Board[row][col], entity.Piece{Color: mover, Size: size})
	next.ReserveOf(mover).Take(size)

	settleTurn(next)

	return next, captured
}

// ApplyRelocation assumes the relocation already validated.
func ApplyRelocation(state *entity.GameState, fromRow, fromCol, toRow, toCol int) (*entity.GameState, *entity.Piece) {
	next := state.Clone()

	source := next.Board[fromRow][fromCol]
	moving := source[len(source)-1]
	next.Board[fromRow][fromCol] = source[:len(source)-1]

	captured := topOf(next.Board[toRow][toCol])

	next.Board[toRow][toCol] = append(next.Board[toRow][toCol], moving)

	settleTurn(next)

	return next, captured
}

// settleTurn evaluates the winner after a move landed. A winning move freezes
// CurrentPlayer; otherwise the turn passes to the other side.
func settleTurn(state *entity.GameState) {
	if winner := CheckWinner(state); winner != "" {
		state.Winner = winner
		return
	}

	state.CurrentPlayer = state.CurrentPlayer.Opponent()
}

// CheckWinner scans the eight lines and returns the color of the first line
// whose three cells are all occupied with same-colored top pieces, or "".
// Buried pieces never contribute.
func CheckWinner(state *entity.GameState) entity.Color {
	for _, line := range winLines {
		first, ok := state.Board[line[0][0]][line[0][1]].Top()
		if !ok {
			continue
		}

		won := true
		for _, cell := range line[1:] {
			top, ok := state.Board[cell[0]][cell[1]].Top()
			if !ok || top.Color != first.Color {
				won = false
				break
			}
		}

		if won {
			return first.Color
		}
	}

	return ""
}

// ValidateMove dispatches on the move's type, checking it on behalf of color.
func ValidateMove(state *entity.GameState, move *entity.Move, color entity.Color) error {
	switch move.Type {
	case entity.MovePlace:
		return ValidatePlacement(state, move.Row, move.Col, color, move.Size)
	case entity.MoveRelocate:
		if color != state.CurrentPlayer {
			return apperror.ErrNotYourTurn
		}
		return ValidateRelocation(state, move.FromRow, move.FromCol, move.ToRow, move.ToCol)
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownMoveType, move.Type)
	}
}

// ApplyMove validates and applies a move for the state's current player. On
// success it returns the next snapshot, the move annotated with the mover's
// color and the moved piece's size, and the captured piece if the move
// covered one.
func ApplyMove(state *entity.GameState, move entity.Move) (*entity.GameState, entity.Move, *entity.Piece, error) {
	if err := ValidateMove(state, &move, state.CurrentPlayer); err != nil {
		return nil, move, nil, err
	}

	move.Color = state.CurrentPlayer

	var next *entity.GameState
	var captured *entity.Piece

	switch move.Type {
	case entity.MovePlace:
		next, captured = ApplyPlacement(state, move.Row, move.Col, move.Size)
	case entity.MoveRelocate:
		moving, _ := state.Board[move.FromRow][move.FromCol].Top()
		move.Size = moving.Size
		next, captured = ApplyRelocation(state, move.FromRow, move.FromCol, move.ToRow, move.ToCol)
	}

	return next, move, captured, nil
}

func topOf(cell entity.Cell) *entity.Piece {
	top, ok := cell.Top()
	if !ok {
		return nil
	}
	return &top
}
