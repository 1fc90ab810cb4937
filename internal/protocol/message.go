package protocol

import "encoding/json"

// Kind tags the variant carried by an envelope.
type Kind string

const (
	KindName Kind = "NAME"
	KindMove Kind = "MOVE"
)

// Message is one of Name or Move.
type Message interface {
	Kind() Kind

	sealed()
}

// Name announces the sender's display name. Each side sends it once, right after the
// connection opens.
type Name struct {
	Name string `json:"name"`
}

func (Name) Kind() Kind { return KindName }
func (Name) sealed()    {}

// Move is sent after the sender already applied it to its own board.
type Move struct {
	Index  int    `json:"index"`
	Symbol string `json:"symbol"`
}

func (Move) Kind() Kind { return KindMove }
func (Move) sealed()    {}

// envelope is the wire shape of every message.
type envelope struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Delivery is what a transport hands to a session: a decoded message, a *DecodeError for a
// frame that could not be decoded, or a connection error.
type Delivery struct {
	Message Message
	Err     error
}
