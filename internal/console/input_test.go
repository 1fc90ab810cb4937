package console

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/session"
)

func TestReadMoves(t *testing.T) {
	t.Run("Valid lines become zero-based cells", func(t *testing.T) {
		var cells []int

		// Given: input with noise between the moves
		input := strings.NewReader("5\n\nabc\n0\n10\n 1 \n9\n")

		// When: the input is consumed
		err := ReadMoves(context.Background(), input, func(_ context.Context, cell int) error {
			cells = append(cells, cell)
			return nil
		})

		// Then: only 1..9 reach the session
		require.NoError(t, err)
		assert.Equal(t, []int{4, 0, 8}, cells)
	})

	t.Run("Rejected moves are ignored", func(t *testing.T) {
		calls := 0

		err := ReadMoves(context.Background(), strings.NewReader("1\n1\n2\n"), func(_ context.Context, _ int) error {
			calls++
			return apperror.ErrCellOccupied
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("Stops when the session is closed", func(t *testing.T) {
		calls := 0

		err := ReadMoves(context.Background(), strings.NewReader("1\n2\n3\n"), func(_ context.Context, _ int) error {
			calls++
			return session.ErrSessionClosed
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("Stops on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		// a reader that never delivers a line
		blocked := &blockingReader{release: make(chan struct{})}
		defer close(blocked.release)

		err := ReadMoves(ctx, blocked, func(_ context.Context, _ int) error { return nil })

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

type blockingReader struct {
	release chan struct{}
}

func (r *blockingReader) Read(_ []byte) (int, error) {
	<-r.release
	return 0, context.Canceled
}
