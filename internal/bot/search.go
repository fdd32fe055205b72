package bot

import (
	"sort"

	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
	"github.com/rocketscienceinc/gobbler-backend/internal/gobbler"
)

const (
	infinity = 1 << 30

	// winScore dominates any positional evaluation; adding the remaining
	// depth makes nearer wins score higher than distant ones.
	winScore = 1 << 20

	centerBonus = 3
	cornerBonus = 1
)

// minimax scores state from color's perspective, searching depth plies deep.
func minimax(state *entity.GameState, color entity.Color, depth int) int {
	if terminal, score := terminalScore(state, color, depth); terminal {
		return score
	}

	if depth == 0 {
		return evaluate(state, color)
	}

	mover := state.CurrentPlayer
	moves := gobbler.LegalMoves(state, mover)
	if len(moves) == 0 {
		return evaluate(state, color)
	}

	maximizing := mover == color
	best := infinity
	if maximizing {
		best = -infinity
	}

	for _, move := range moves {
		next, _, _, err := gobbler.ApplyMove(state, move)
		if err != nil {
			continue
		}

		score := minimax(next, color, depth-1)
		if maximizing && score > best {
			best = score
		}
		if !maximizing && score < best {
			best = score
		}
	}

	return best
}

// alphabeta is minimax over the same tree and evaluation, with pruning.
func alphabeta(state *entity.GameState, color entity.Color, depth, alpha, beta int) int {
	if terminal, score := terminalScore(state, color, depth); terminal {
		return score
	}

	if depth == 0 {
		return evaluate(state, color)
	}

	mover := state.CurrentPlayer
	moves := gobbler.LegalMoves(state, mover)
	if len(moves) == 0 {
		return evaluate(state, color)
	}

	moves = orderMoves(state, moves, mover)

	if mover == color {
		best := -infinity
		for _, move := range moves {
			next, _, _, err := gobbler.ApplyMove(state, move)
			if err != nil {
				continue
			}

			if score := alphabeta(next, color, depth-1, alpha, beta); score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
			if alpha >= beta {
				break
			}
		}
		return best
	}

	best := infinity
	for _, move := range moves {
		next, _, _, err := gobbler.ApplyMove(state, move)
		if err != nil {
			continue
		}

		if score := alphabeta(next, color, depth-1, alpha, beta); score < best {
			best = score
		}
		if best < beta {
			beta = best
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

func terminalScore(state *entity.GameState, color entity.Color, depth int) (bool, int) {
	switch state.Winner {
	case color:
		return true, winScore + depth
	case color.Opponent():
		return true, -(winScore + depth)
	default:
		return false, 0
	}
}

// evaluate sums the visible material: each top piece contributes its size
// rank plus a positional bonus, signed by ownership.
func evaluate(state *entity.GameState, color entity.Color) int {
	score := 0

	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			top, ok := state.Board[row][col].Top()
			if !ok {
				continue
			}

			value := top.Size.Rank() + positionBonus(row, col)
			if top.Color == color {
				score += value
			} else {
				score -= value
			}
		}
	}

	return score
}

func positionBonus(row, col int) int {
	if row == 1 && col == 1 {
		return centerBonus
	}
	if row != 1 && col != 1 {
		return cornerBonus
	}
	return 0
}

// moveScore is the greedy capture/centrality preference: covering an opposing
// piece is worth its rank, landing on the center or a corner adds a little.
func moveScore(state *entity.GameState, move *entity.Move, color entity.Color) int {
	row, col := move.Destination()

	score := positionBonus(row, col)
	if top, ok := state.Board[row][col].Top(); ok && top.Color != color {
		score += 2 * top.Size.Rank()
	}

	return score
}

// orderMoves sorts candidates best-greedy-score-first so alpha-beta prunes
// earlier. The sort is stable to keep move selection deterministic.
func orderMoves(state *entity.GameState, moves []entity.Move, color entity.Color) []entity.Move {
	ordered := make([]entity.Move, len(moves))
	copy(ordered, moves)

	sort.SliceStable(ordered, func(i, j int) bool {
		return moveScore(state, &ordered[i], color) > moveScore(state, &ordered[j], color)
	})

	return ordered
}
