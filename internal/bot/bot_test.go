package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
	"github.com/rocketscienceinc/gobbler-backend/internal/gobbler"
)

var allDifficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// winInOnePosition returns a state where red completes row 0 by placing at
// (0,2).
func winInOnePosition() *entity.GameState {
	state := entity.NewGameState()
	state.Board[0][0] = entity.Cell{{Color: entity.ColorRed, Size: entity.SizeSmall}}
	state.Board[0][1] = entity.Cell{{Color: entity.ColorRed, Size: entity.SizeSmall}}
	state.Board[2][2] = entity.Cell{{Color: entity.ColorBlue, Size: entity.SizeSmall}}
	state.Board[2][1] = entity.Cell{{Color: entity.ColorBlue, Size: entity.SizeSmall}}
	return state
}

func TestService_SelectMove(t *testing.T) {
	bot := New()

	t.Run("Every difficulty takes an immediate win", func(t *testing.T) {
		for _, difficulty := range allDifficulties {
			// Given: red can finish row 0 right now
			state := winInOnePosition()

			// When: the bot picks for red
			move := bot.SelectMove(state, entity.ColorRed, difficulty)

			// Then: the game ends in red's favor
			require.NotNil(t, move, "difficulty %s", difficulty)
			next, _, _, err := gobbler.ApplyMove(state, *move)
			require.NoError(t, err)
			assert.Equal(t, entity.ColorRed, next.Winner, "difficulty %s", difficulty)
		}
	})

	t.Run("Every difficulty blocks the opponent's win-in-one", func(t *testing.T) {
		for _, difficulty := range allDifficulties {
			// Given: blue to move; red threatens (0,2) to complete row 0 and
			// blue cannot win this turn
			state := winInOnePosition()
			state.CurrentPlayer = entity.ColorBlue
			state.Board[2][1] = nil

			move := bot.SelectMove(state, entity.ColorBlue, difficulty)
			require.NotNil(t, move, "difficulty %s", difficulty)

			// Then: after blue's move, red has no single winning reply
			next, _, _, err := gobbler.ApplyMove(state, *move)
			require.NoError(t, err)
			for _, reply := range gobbler.LegalMoves(next, entity.ColorRed) {
				after, _, _, err := gobbler.ApplyMove(next, reply)
				require.NoError(t, err)
				assert.NotEqual(t, entity.ColorRed, after.Winner,
					"difficulty %s let red win with %+v", difficulty, reply)
			}
		}
	})

	t.Run("Selected moves are always legal", func(t *testing.T) {
		// Given: a cramped position with stacks and partial reserves
		state := entity.NewGameState()
		state.Board[0][0] = entity.Cell{{Color: entity.ColorBlue, Size: entity.SizeLarge}}
		state.Board[1][1] = entity.Cell{
			{Color: entity.ColorRed, Size: entity.SizeSmall},
			{Color: entity.ColorBlue, Size: entity.SizeMedium},
		}
		state.Board[2][2] = entity.Cell{{Color: entity.ColorRed, Size: entity.SizeMedium}}
		state.Reserves.Red = entity.Reserve{Small: 1, Large: 1}
		state.Reserves.Blue = entity.Reserve{Medium: 1}

		for _, difficulty := range allDifficulties {
			move := bot.SelectMove(state, entity.ColorRed, difficulty)

			require.NotNil(t, move, "difficulty %s", difficulty)
			assert.NoError(t, gobbler.ValidateMove(state, move, entity.ColorRed),
				"difficulty %s", difficulty)
		}
	})

	t.Run("No legal move yields nil", func(t *testing.T) {
		// Given: red's reserve is empty and every red piece is buried
		state := entity.NewGameState()
		state.Reserves.Red = entity.Reserve{}
		state.Board[0][0] = entity.Cell{
			{Color: entity.ColorRed, Size: entity.SizeSmall},
			{Color: entity.ColorBlue, Size: entity.SizeLarge},
		}

		for _, difficulty := range allDifficulties {
			assert.Nil(t, bot.SelectMove(state, entity.ColorRed, difficulty),
				"difficulty %s", difficulty)
		}
	})

	t.Run("Finished game yields nil", func(t *testing.T) {
		state := winInOnePosition()
		state.Board[0][2] = entity.Cell{{Color: entity.ColorRed, Size: entity.SizeSmall}}
		state.Winner = entity.ColorRed

		assert.Nil(t, bot.SelectMove(state, entity.ColorRed, DifficultyHard))
	})

	t.Run("Easy avoids uncovering an opposing line", func(t *testing.T) {
		// Given: red's large at (0,2) buries blue's small, completing blue's
		// row 0 if lifted; red still has reserve pieces for safe placements
		state := entity.NewGameState()
		state.Board[0][0] = entity.Cell{{Color: entity.ColorBlue, Size: entity.SizeMedium}}
		state.Board[0][1] = entity.Cell{{Color: entity.ColorBlue, Size: entity.SizeMedium}}
		state.Board[0][2] = entity.Cell{
			{Color: entity.ColorBlue, Size: entity.SizeSmall},
			{Color: entity.ColorRed, Size: entity.SizeLarge},
		}

		move := bot.SelectMove(state, entity.ColorRed, DifficultyEasy)

		require.NotNil(t, move)
		next, _, _, err := gobbler.ApplyMove(state, *move)
		require.NoError(t, err)
		assert.NotEqual(t, entity.ColorBlue, next.Winner)
	})
}

func TestEvaluate(t *testing.T) {
	t.Run("Evaluation is zero-sum between the colors", func(t *testing.T) {
		state := entity.NewGameState()
		state.Board[1][1] = entity.Cell{{Color: entity.ColorRed, Size: entity.SizeLarge}}
		state.Board[0][0] = entity.Cell{{Color: entity.ColorBlue, Size: entity.SizeSmall}}

		assert.Equal(t, evaluate(state, entity.ColorRed), -evaluate(state, entity.ColorBlue))
	})

	t.Run("Center piece outscores the same piece on an edge", func(t *testing.T) {
		center := entity.NewGameState()
		center.Board[1][1] = entity.Cell{{Color: entity.ColorRed, Size: entity.SizeMedium}}

		edge := entity.NewGameState()
		edge.Board[0][1] = entity.Cell{{Color: entity.ColorRed, Size: entity.SizeMedium}}

		assert.Greater(t, evaluate(center, entity.ColorRed), evaluate(edge, entity.ColorRed))
	})
}

func TestOrderMoves(t *testing.T) {
	t.Run("Capturing moves sort ahead of quiet ones", func(t *testing.T) {
		// Given: blue's medium on an edge cell is capturable
		state := entity.NewGameState()
		state.Board[0][1] = entity.Cell{{Color: entity.ColorBlue, Size: entity.SizeMedium}}

		moves := []entity.Move{
			entity.NewPlacement(2, 1, entity.SizeLarge),
			entity.NewPlacement(0, 1, entity.SizeLarge),
		}

		ordered := orderMoves(state, moves, entity.ColorRed)

		require.Len(t, ordered, 2)
		assert.Equal(t, 0, ordered[0].Row)
		assert.Equal(t, 1, ordered[0].Col)
	})
}
