package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

const (
	colorX      = "#8BE9FD"
	colorO      = "#FF79C6"
	colorWin    = "#50FA7B"
	colorLose   = "#FF5555"
	colorHeader = "#F1FA8C"
	colorHint   = "#6272A4"
)

const (
	badgeMyTurn    = "YOUR TURN"
	badgeRivalTurn = "RIVAL'S TURN"
	badgeWaiting   = "WAITING FOR RIVAL"
	badgeWin       = "YOU WIN"
	badgeLose      = "YOU LOSE"
	badgeDraw      = "DRAW"

	leaderboardEmpty = "no data yet"
)

type Option func(*Console)

// WithProfile - forces a colour profile, termenv.Ascii disables styling.
func WithProfile(profile termenv.Profile) Option {
	return func(c *Console) {
		c.out = termenv.NewOutput(c.w, termenv.WithProfile(profile))
	}
}

// WithClearScreen - redraw the board on a clean screen instead of appending.
func WithClearScreen(clear bool) Option {
	return func(c *Console) {
		c.clear = clear
	}
}

// Console draws the game on a terminal. It implements the session observer.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	out   *termenv.Output
	clear bool
}

func New(w io.Writer, opts ...Option) *Console {
	c := &Console{
		w:   w,
		out: termenv.NewOutput(w),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (that *Console) GameUpdated(game entity.Game) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.clear {
		that.out.ClearScreen()
	}

	_, _ = fmt.Fprint(that.out, that.RenderGame(game))
}

// RenderGame - players, board and the status badge.
func (that *Console) RenderGame(game entity.Game) string {
	var sb strings.Builder

	sb.WriteString(that.renderPlayer(game, entity.PlayerX))
	sb.WriteString("  vs  ")
	sb.WriteString(that.renderPlayer(game, entity.PlayerO))
	sb.WriteString("\n\n")

	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			index := row*3 + col
			cells[col] = " " + that.renderCell(game.Board[index], index) + " "
		}

		sb.WriteString(strings.Join(cells, "|"))
		sb.WriteString("\n")

		if row < 2 {
			sb.WriteString("---+---+---\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(that.renderBadge(game))
	sb.WriteString("\n")

	if game.IsActive() && game.IsMyTurn() {
		sb.WriteString(that.out.String("type a cell number 1-9").Foreground(that.out.Color(colorHint)).String())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ShowInvite - what the initiator shares with the rival.
func (that *Console) ShowInvite(link, qr string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	header := that.out.String("Share this link with your rival:").Foreground(that.out.Color(colorHeader)).Bold()

	_, _ = fmt.Fprintf(that.out, "%s\n\n  %s\n\n", header, link)
	if qr != "" {
		_, _ = fmt.Fprintf(that.out, "%s\n", qr)
	}
	_, _ = fmt.Fprintf(that.out, "or run: tictactoe join %s\n\n", link)
}

func (that *Console) ShowLeaderboard(entries []entity.RankEntry) {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, _ = fmt.Fprintln(that.out, that.out.String("RANKING").Foreground(that.out.Color(colorHeader)).Bold())

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(that.out, leaderboardEmpty)
		return
	}

	width := 0
	for _, entry := range entries {
		width = max(width, len([]rune(entry.Name)))
	}

	for i, entry := range entries {
		_, _ = fmt.Fprintf(that.out, "%2d. %-*s %d\n", i+1, width, entry.Name, entry.Score)
	}
}

func (that *Console) Info(msg string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, _ = fmt.Fprintln(that.out, that.out.String(msg).Foreground(that.out.Color(colorHint)))
}

func (that *Console) ShowError(err error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, _ = fmt.Fprintln(that.out, that.out.String("error: "+err.Error()).Foreground(that.out.Color(colorLose)).Bold())
}

func (that *Console) renderPlayer(game entity.Game, mark string) string {
	name := game.PlayerName(mark)
	if name == "" {
		name = "..."
	}

	label := that.renderMark(mark) + " " + name
	if mark == game.MySymbol {
		label += " (you)"
	}

	return label
}

func (that *Console) renderCell(cell string, index int) string {
	if cell == entity.EmptyCell {
		return that.out.String(strconv.Itoa(index + 1)).Foreground(that.out.Color(colorHint)).Faint().String()
	}

	return that.renderMark(cell)
}

func (that *Console) renderMark(mark string) string {
	color := colorX
	if mark == entity.PlayerO {
		color = colorO
	}

	return that.out.String(mark).Foreground(that.out.Color(color)).Bold().String()
}

func (that *Console) renderBadge(game entity.Game) string {
	var text, color string

	switch {
	case game.IsWaiting():
		text, color = badgeWaiting, colorHint
	case game.IsDraw():
		text, color = badgeDraw, colorHeader
	case game.IWon():
		text, color = badgeWin, colorWin
	case game.IsFinished():
		text, color = badgeLose, colorLose
	case game.IsMyTurn():
		text, color = badgeMyTurn, colorWin
	default:
		text, color = badgeRivalTurn, colorHeader
	}

	return that.out.String(text).Foreground(that.out.Color(color)).Bold().String()
}
