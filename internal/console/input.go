package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/session"
)

// PlayFunc submits a move for a zero-based cell.
type PlayFunc func(ctx context.Context, cell int) error

// ReadMoves - reads one cell number (1-9) per line and submits it. Anything else and
// rejected moves are ignored. Returns when input ends, the session closes or ctx is done.
func ReadMoves(ctx context.Context, r io.Reader, play PlayFunc) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return ctx.Err()
				}
			}

			cell, ok := parseCell(line)
			if !ok {
				continue
			}

			if err := play(ctx, cell); errors.Is(err, session.ErrSessionClosed) {
				return nil
			}
		}
	}
}

func parseCell(line string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > 9 {
		return 0, false
	}

	return n - 1, true
}
