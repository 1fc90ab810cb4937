package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownKind = errors.New("unknown message kind")
)

// DecodeError describes a frame that was received but cannot be turned into a Message.
type DecodeError struct {
	Kind   Kind
	Reason string
	Err    error
}

func (that *DecodeError) Error() string {
	if that.Kind == "" {
		return fmt.Sprintf("%v: %s", that.Err, that.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", that.Err, that.Kind, that.Reason)
}

func (that *DecodeError) Unwrap() error {
	return that.Err
}

// Encode - validates msg and marshals it into its wire envelope.
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: nil message", ErrMalformed)
	}

	if err := validate(msg); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(envelope{Type: msg.Kind(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

// Decode - parses a wire envelope. Every failure is a *DecodeError.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Reason: err.Error(), Err: ErrMalformed}
	}

	var msg Message

	switch env.Type {
	case KindName:
		var name Name
		if err := unmarshalPayload(env, &name); err != nil {
			return nil, err
		}
		msg = name
	case KindMove:
		var move Move
		if err := unmarshalPayload(env, &move); err != nil {
			return nil, err
		}
		msg = move
	default:
		return nil, &DecodeError{Kind: env.Type, Reason: "unsupported type", Err: ErrUnknownKind}
	}

	if err := validate(msg); err != nil {
		return nil, err
	}

	return msg, nil
}

func unmarshalPayload(env envelope, target any) error {
	if len(env.Payload) == 0 {
		return &DecodeError{Kind: env.Type, Reason: "missing payload", Err: ErrMalformed}
	}

	if err := json.Unmarshal(env.Payload, target); err != nil {
		return &DecodeError{Kind: env.Type, Reason: err.Error(), Err: ErrMalformed}
	}

	return nil
}

func validate(msg Message) error {
	switch m := msg.(type) {
	case Name:
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return &DecodeError{Kind: KindName, Reason: "empty name", Err: ErrMalformed}
		}
		if !entity.NameFits(name) {
			return &DecodeError{Kind: KindName, Reason: fmt.Sprintf("name longer than %d characters", entity.MaxNameLength), Err: ErrMalformed}
		}
	case Move:
		if err := entity.ValidateCell(m.Index); err != nil {
			return &DecodeError{Kind: KindMove, Reason: err.Error(), Err: ErrMalformed}
		}
		if !entity.IsMark(m.Symbol) {
			return &DecodeError{Kind: KindMove, Reason: fmt.Sprintf("unknown symbol %q", m.Symbol), Err: ErrMalformed}
		}
	default:
		return &DecodeError{Kind: msg.Kind(), Reason: "unsupported type", Err: ErrUnknownKind}
	}

	return nil
}
