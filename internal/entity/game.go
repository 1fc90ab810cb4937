package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""
)

var (
	ErrInvalidCell       = errors.New("invalid cell index")
	ErrInvalidMark       = errors.New("invalid player mark")
	ErrUnknownGameStatus = errors.New("unknown game status")
)

// Board is the 3x3 grid stored row by row.
type Board [9]string

// Game is one peer's replica of the match. Both peers hold an identical Board and Turn
// as long as every accepted move is applied on both sides.
type Game struct {
	Board    Board             `json:"board"`
	Turn     string            `json:"turn"`
	MySymbol string            `json:"my_symbol"`
	Status   string            `json:"status"`
	Winner   string            `json:"winner"`
	Players  map[string]string `json:"players"`
}

func NewGame(mySymbol string) *Game {
	return &Game{
		Board:    Board{EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell},
		Turn:     PlayerX,
		MySymbol: mySymbol,
		Status:   StatusWaiting,
		Players:  map[string]string{},
	}
}

// SetPlayerName records the display name for mark. The game becomes ongoing once both
// names are known; a name arriving later never changes an ongoing or finished game.
func (that *Game) SetPlayerName(mark, name string) error {
	if !IsMark(mark) {
		return fmt.Errorf("%w: %q", ErrInvalidMark, mark)
	}

	that.Players[mark] = name

	if that.IsWaiting() && that.Players[PlayerX] != "" && that.Players[PlayerO] != "" {
		that.Status = StatusOngoing
	}

	return nil
}

func (that *Game) PlayerName(mark string) string {
	return that.Players[mark]
}

func (that *Game) RivalSymbol() string {
	return Opponent(that.MySymbol)
}

func (that *Game) IsMyTurn() bool {
	return that.Turn == that.MySymbol
}

// IsActive reports whether moves are currently accepted.
func (that *Game) IsActive() bool {
	return that.IsOngoing()
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsDraw() bool {
	return that.IsFinished() && that.Winner == PlayerTie
}

// IWon reports whether the local side won a finished game.
func (that *Game) IWon() bool {
	return that.IsFinished() && that.Winner == that.MySymbol
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (that *Game) Clone() Game {
	clone := *that

	clone.Players = make(map[string]string, len(that.Players))
	for mark, name := range that.Players {
		clone.Players[mark] = name
	}

	return clone
}

func IsMark(mark string) bool {
	return mark == PlayerX || mark == PlayerO
}

func Opponent(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func ValidateCell(cell int) error {
	if cell < 0 || cell >= len(Board{}) {
		return fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}
	return nil
}
