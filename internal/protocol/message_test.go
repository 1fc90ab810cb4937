package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeError(t *testing.T) {
	t.Run("Message carries kind and reason", func(t *testing.T) {
		err := &DecodeError{Kind: KindMove, Reason: "bad index", Err: ErrMalformed}

		assert.Equal(t, "malformed message: MOVE: bad index", err.Error())
	})

	t.Run("Message without kind", func(t *testing.T) {
		err := &DecodeError{Reason: "unexpected end of JSON input", Err: ErrMalformed}

		assert.Equal(t, "malformed message: unexpected end of JSON input", err.Error())
	})
}
