package tictactoe

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	x = entity.PlayerX
	o = entity.PlayerO
	e = entity.EmptyCell
)

func newOngoingGame(mySymbol string) *entity.Game {
	game := entity.NewGame(mySymbol)
	game.Players = map[string]string{x: "Ana", o: "Bruno"}
	game.Status = entity.StatusOngoing

	return game
}

func TestApplyMove(t *testing.T) {
	t.Run("ApplyMove", func(t *testing.T) {
		// Given: an ongoing game
		game := newOngoingGame(x)

		// When: player X makes a move
		err := ApplyMove(game, x, 0)
		require.NoError(t, err)

		// Then: the cell is set and the turn flips
		expectedGame := &entity.Game{
			Board:    entity.Board{x, e, e, e, e, e, e, e, e},
			Turn:     o,
			MySymbol: x,
			Status:   entity.StatusOngoing,
			Winner:   "",
			Players:  map[string]string{x: "Ana", o: "Bruno"},
		}

		require.Equal(t, expectedGame, game)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: a game where cell 0 is taken by X
		game := newOngoingGame(x)
		require.NoError(t, ApplyMove(game, x, 0))
		before := game.Clone()

		// When: O tries the same cell
		err := ApplyMove(game, o, 0)

		// Then: ErrCellOccupied is returned and nothing changes
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		require.Equal(t, before, game.Clone())
	})

	t.Run("Error when game is not started", func(t *testing.T) {
		game := entity.NewGame(x)

		err := ApplyMove(game, x, 0)

		require.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
		assert.Equal(t, e, game.Board[0])
	})

	t.Run("Invalid Cell", func(t *testing.T) {
		game := newOngoingGame(x)

		assert.ErrorIs(t, ApplyMove(game, x, 20), entity.ErrInvalidCell)
		assert.ErrorIs(t, ApplyMove(game, x, -1), entity.ErrInvalidCell)
	})

	t.Run("Invalid Mark", func(t *testing.T) {
		game := newOngoingGame(x)

		assert.ErrorIs(t, ApplyMove(game, "Z", 1), entity.ErrInvalidMark)
	})

	t.Run("Move After Game Finished", func(t *testing.T) {
		// Given: a game that X has already won
		game := newOngoingGame(x)
		game.Board = entity.Board{x, x, x, e, o, e, e, o, e}
		game.Status = entity.StatusFinished
		game.Winner = x

		// When: O tries to move afterwards
		err := ApplyMove(game, o, 3)

		// Then: ErrGameFinished is returned and the board is frozen
		assert.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, e, game.Board[3])
	})

	t.Run("Winning move finishes the game", func(t *testing.T) {
		// Given: [X,X,_,O,O,_,_,_,_] with X to move
		game := newOngoingGame(x)
		game.Board = entity.Board{x, x, e, o, o, e, e, e, e}

		// When: X plays index 2
		require.NoError(t, ApplyMove(game, x, 2))

		// Then: X wins
		assert.True(t, game.IsFinished())
		assert.Equal(t, x, game.Winner)
		assert.Equal(t, "", game.Turn)
		assert.False(t, game.IsActive())
	})

	t.Run("Last cell with a line is a win, not a draw", func(t *testing.T) {
		// Given: one empty cell whose filling completes X's top row
		game := newOngoingGame(x)
		game.Board = entity.Board{x, x, e, o, o, x, x, o, o}

		// When: X fills it
		require.NoError(t, ApplyMove(game, x, 2))

		// Then: the result is a win
		assert.Equal(t, x, game.Winner)
		assert.False(t, game.IsDraw())
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		game := newOngoingGame(x)
		game.Board = entity.Board{x, o, x, o, x, o, o, e, o}
		game.Turn = x

		require.NoError(t, ApplyMove(game, x, 7))

		assert.True(t, game.IsDraw())
	})
}

func TestApplyMove_Alternation(t *testing.T) {
	// Given: a fresh ongoing game and a sequence of distinct cells
	game := newOngoingGame(x)
	sequence := []int{4, 0, 8, 2, 6, 3, 5, 7, 1}

	for n, cell := range sequence {
		if game.IsFinished() {
			break
		}

		// Then: before move n the turn belongs to X on even n, O on odd n
		expected := x
		if n%2 == 1 {
			expected = o
		}
		require.Equal(t, expected, game.Turn, "move %d", n)

		// When: the owner of the turn plays a distinct cell
		require.NoError(t, ApplyMove(game, game.Turn, cell))
	}

	// Then: no cell holds anything but a single mark
	for _, cell := range game.Board {
		assert.Contains(t, []string{x, o, e}, cell)
	}
}

func TestValidateLocalMove(t *testing.T) {
	t.Run("Accepts a move on my turn", func(t *testing.T) {
		game := newOngoingGame(x)

		assert.NoError(t, ValidateLocalMove(game, 4))
	})

	t.Run("Rejects a move out of turn", func(t *testing.T) {
		game := newOngoingGame(o)

		assert.ErrorIs(t, ValidateLocalMove(game, 4), apperror.ErrNotYourTurn)
	})

	t.Run("Rejects an occupied cell", func(t *testing.T) {
		game := newOngoingGame(x)
		game.Board[4] = o

		assert.ErrorIs(t, ValidateLocalMove(game, 4), apperror.ErrCellOccupied)
	})

	t.Run("Rejects an inactive game", func(t *testing.T) {
		game := entity.NewGame(x)

		assert.ErrorIs(t, ValidateLocalMove(game, 4), apperror.ErrGameIsNotStarted)
	})

	t.Run("Rejects an out of range cell", func(t *testing.T) {
		game := newOngoingGame(x)

		assert.ErrorIs(t, ValidateLocalMove(game, 9), entity.ErrInvalidCell)
	})
}

func TestValidateRemoteMove(t *testing.T) {
	t.Run("Accepts the rival's move on the rival's turn", func(t *testing.T) {
		game := newOngoingGame(o)

		assert.NoError(t, ValidateRemoteMove(game, x, 0))
	})

	t.Run("Rejects the rival playing my mark", func(t *testing.T) {
		game := newOngoingGame(o)

		assert.ErrorIs(t, ValidateRemoteMove(game, o, 0), entity.ErrInvalidMark)
	})

	t.Run("Rejects the rival playing out of turn", func(t *testing.T) {
		game := newOngoingGame(x)

		assert.ErrorIs(t, ValidateRemoteMove(game, o, 0), apperror.ErrNotYourTurn)
	})

	t.Run("Rejects an occupied cell", func(t *testing.T) {
		game := newOngoingGame(o)
		game.Board[0] = o

		assert.ErrorIs(t, ValidateRemoteMove(game, x, 0), apperror.ErrCellOccupied)
	})
}
