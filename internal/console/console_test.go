package console

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

func newTestConsole() (*Console, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf, WithProfile(termenv.Ascii)), &buf
}

func activeGame(t *testing.T, mySymbol string) *entity.Game {
	t.Helper()

	game := entity.NewGame(mySymbol)
	require.NoError(t, game.SetPlayerName(entity.PlayerX, "Ana"))
	require.NoError(t, game.SetPlayerName(entity.PlayerO, "Bruno"))

	return game
}

func TestConsole_RenderGame(t *testing.T) {
	t.Run("Board with numbered empty cells", func(t *testing.T) {
		c, _ := newTestConsole()

		// Given: X in the center and O in the top left corner
		game := activeGame(t, entity.PlayerX)
		game.Board[4] = entity.PlayerX
		game.Board[0] = entity.PlayerO

		// When: the game is rendered without colours
		out := c.RenderGame(*game)

		// Then: the grid shows marks and the numbers of free cells
		assert.Contains(t, out, "X Ana (you)  vs  O Bruno\n")
		assert.Contains(t, out, " O | 2 | 3 \n---+---+---\n 4 | X | 6 \n---+---+---\n 7 | 8 | 9 \n")
		assert.Contains(t, out, badgeMyTurn)
		assert.Contains(t, out, "type a cell number 1-9")
	})

	t.Run("Rival's turn", func(t *testing.T) {
		c, _ := newTestConsole()

		out := c.RenderGame(*activeGame(t, entity.PlayerO))

		assert.Contains(t, out, badgeRivalTurn)
		assert.Contains(t, out, "O Bruno (you)")
		assert.NotContains(t, out, "type a cell number")
	})

	t.Run("Waiting for the rival", func(t *testing.T) {
		c, _ := newTestConsole()

		game := entity.NewGame(entity.PlayerX)
		require.NoError(t, game.SetPlayerName(entity.PlayerX, "Ana"))

		out := c.RenderGame(*game)

		assert.Contains(t, out, "O ...")
		assert.Contains(t, out, badgeWaiting)
	})

	t.Run("Results", func(t *testing.T) {
		tests := []struct {
			name     string
			mySymbol string
			winner   string
			badge    string
		}{
			{name: "win", mySymbol: entity.PlayerX, winner: entity.PlayerX, badge: badgeWin},
			{name: "loss", mySymbol: entity.PlayerO, winner: entity.PlayerX, badge: badgeLose},
			{name: "draw", mySymbol: entity.PlayerO, winner: entity.PlayerTie, badge: badgeDraw},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c, _ := newTestConsole()

				game := activeGame(t, tt.mySymbol)
				game.Status = entity.StatusFinished
				game.Winner = tt.winner
				game.Turn = ""

				assert.Contains(t, c.RenderGame(*game), tt.badge)
			})
		}
	})
}

func TestConsole_GameUpdated(t *testing.T) {
	const clearScreen = "\x1b[2J"

	t.Run("Appends by default", func(t *testing.T) {
		c, buf := newTestConsole()

		c.GameUpdated(*activeGame(t, entity.PlayerX))

		assert.Contains(t, buf.String(), badgeMyTurn)
		assert.NotContains(t, buf.String(), clearScreen)
	})

	t.Run("Clears the screen before each redraw", func(t *testing.T) {
		var buf bytes.Buffer
		c := New(&buf, WithProfile(termenv.Ascii), WithClearScreen(true))

		c.GameUpdated(*activeGame(t, entity.PlayerX))

		assert.Contains(t, buf.String(), clearScreen)
		assert.Less(t, bytes.Index(buf.Bytes(), []byte(clearScreen)), bytes.Index(buf.Bytes(), []byte(badgeMyTurn)))
	})
}

func TestConsole_ShowError(t *testing.T) {
	c, buf := newTestConsole()

	c.ShowError(fmt.Errorf("%w: transport closed", apperror.ErrConnectionLost))

	assert.Equal(t, "error: peer connection lost: transport closed\n", buf.String())
}

func TestConsole_ShowInvite(t *testing.T) {
	c, buf := newTestConsole()

	c.ShowInvite("http://10.0.0.2:9090/session/abc", "##QR##")

	out := buf.String()
	assert.Contains(t, out, "  http://10.0.0.2:9090/session/abc\n")
	assert.Contains(t, out, "##QR##")
	assert.Contains(t, out, "tictactoe join http://10.0.0.2:9090/session/abc")
}

func TestConsole_ShowLeaderboard(t *testing.T) {
	t.Run("Empty ledger", func(t *testing.T) {
		c, buf := newTestConsole()

		c.ShowLeaderboard(nil)

		assert.Equal(t, "RANKING\nno data yet\n", buf.String())
	})

	t.Run("Entries are numbered and aligned", func(t *testing.T) {
		c, buf := newTestConsole()

		c.ShowLeaderboard([]entity.RankEntry{
			{Name: "Davi", Score: 30},
			{Name: "Ana", Score: 20},
		})

		assert.Equal(t, "RANKING\n 1. Davi 30\n 2. Ana  20\n", buf.String())
	})
}
