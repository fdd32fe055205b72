// Package bot picks moves for the computer opponent. Three strategies share
// one entry point: a greedy heuristic for easy, fixed-depth minimax for
// medium, and deeper alpha-beta for hard. All of them draw candidates only
// from gobbler.LegalMoves, so the bot can never emit an illegal move.
package bot

import (
	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
	"github.com/rocketscienceinc/gobbler-backend/internal/gobbler"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

const (
	mediumDepth = 2
	hardDepth   = 4
)

type Service interface {
	// SelectMove returns the chosen move, or nil when color has no legal
	// move. A state that already has a winner also yields nil: the game is
	// over, so there is nothing left to pick.
	SelectMove(state *entity.GameState, color entity.Color, difficulty Difficulty) *entity.Move
}

type service struct{}

func New() Service {
	return &service{}
}

func (that *service) SelectMove(state *entity.GameState, color entity.Color, difficulty Difficulty) *entity.Move {
	if state.HasWinner() {
		return nil
	}

	moves := gobbler.LegalMoves(state, color)
	if len(moves) == 0 {
		return nil
	}

	// A move that wins on the spot beats any amount of search.
	if move := winningMove(state, moves, color); move != nil {
		return move
	}

	switch difficulty {
	case DifficultyMedium:
		return that.searchMove(state, moves, color, mediumDepth, false)
	case DifficultyHard:
		return that.searchMove(state, moves, color, hardDepth, true)
	default:
		return that.greedyMove(state, moves, color)
	}
}

// winningMove returns the first candidate that ends the game in color's favor.
func winningMove(state *entity.GameState, moves []entity.Move, color entity.Color) *entity.Move {
	for i := range moves {
		next, _, _, err := gobbler.ApplyMove(state, moves[i])
		if err != nil {
			continue
		}
		if next.Winner == color {
			return &moves[i]
		}
	}
	return nil
}

// greedyMove prefers moves after which the opponent has no immediate win,
// then the highest capture/centrality score among those.
func (that *service) greedyMove(state *entity.GameState, moves []entity.Move, color entity.Color) *entity.Move {
	safe := make([]entity.Move, 0, len(moves))
	for _, move := range moves {
		next, _, _, err := gobbler.ApplyMove(state, move)
		if err != nil {
			continue
		}
		if next.Winner == color.Opponent() {
			// relocating can uncover an opposing line
			continue
		}
		if opponentWinsNext(next) {
			continue
		}
		safe = append(safe, move)
	}

	pool := safe
	if len(pool) == 0 {
		pool = moves
	}

	best := pool[0]
	bestScore := moveScore(state, &best, color)
	for _, move := range pool[1:] {
		if score := moveScore(state, &move, color); score > bestScore {
			best = move
			bestScore = score
		}
	}

	return &best
}

// opponentWinsNext reports whether the side to move in state can win with a
// single reply.
func opponentWinsNext(state *entity.GameState) bool {
	if state.HasWinner() {
		return false
	}

	replier := state.CurrentPlayer
	for _, reply := range gobbler.LegalMoves(state, replier) {
		next, _, _, err := gobbler.ApplyMove(state, reply)
		if err != nil {
			continue
		}
		if next.Winner == replier {
			return true
		}
	}

	return false
}

func (that *service) searchMove(state *entity.GameState, moves []entity.Move, color entity.Color, depth int, prune bool) *entity.Move {
	ordered := orderMoves(state, moves, color)

	best := ordered[0]
	bestScore := -infinity

	alpha, beta := -infinity, infinity

	for _, move := range ordered {
		next, _, _, err := gobbler.ApplyMove(state, move)
		if err != nil {
			continue
		}

		var score int
		if prune {
			score = alphabeta(next, color, depth-1, alpha, beta)
		} else {
			score = minimax(next, color, depth-1)
		}

		if score > bestScore {
			best = move
			bestScore = score
		}
		if prune && bestScore > alpha {
			alpha = bestScore
		}
	}

	return &best
}
