package gobbler

import "github.com/rocketscienceinc/gobbler-backend/internal/entity"

// LegalMoves enumerates every move the validators would accept for color:
// placements of each size still in reserve onto each cell, then relocations
// of each visibly-owned piece onto each other cell. The bot relies on the
// contract that nothing returned here is ever rejected by ValidateMove.
func LegalMoves(state *entity.GameState, color entity.Color) []entity.Move {
	var moves []entity.Move

	reserve := state.ReserveOf(color)
	for _, size := range entity.Sizes {
		if reserve.Count(size) <= 0 {
			continue
		}

		for row := 0; row < entity.BoardSize; row++ {
			for col := 0; col < entity.BoardSize; col++ {
				if ValidatePlacement(state, row, col, color, size) == nil {
					moves = append(moves, entity.NewPlacement(row, col, size))
				}
			}
		}
	}

	for fromRow := 0; fromRow < entity.BoardSize; fromRow++ {
		for fromCol := 0; fromCol < entity.BoardSize; fromCol++ {
			top, ok := state.Board[fromRow][fromCol].Top()
			if !ok || top.Color != color {
				continue
			}

			for toRow := 0; toRow < entity.BoardSize; toRow++ {
				for toCol := 0; toCol < entity.BoardSize; toCol++ {
					if ValidateRelocation(state, fromRow, fromCol, toRow, toCol) == nil {
						moves = append(moves, entity.NewRelocation(fromRow, fromCol, toRow, toCol))
					}
				}
			}
		}
	}

	return moves
}
