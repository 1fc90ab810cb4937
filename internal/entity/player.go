package entity

import "unicode/utf8"

// MaxNameLength is the longest display name, in characters, a peer accepts.
const MaxNameLength = 32

// Role is fixed when the connection is established and decides the local mark.
type Role int

const (
	Initiator Role = iota
	Responder
)

func (that Role) Mark() string {
	if that == Initiator {
		return PlayerX
	}
	return PlayerO
}

func (that Role) String() string {
	if that == Initiator {
		return "initiator"
	}
	return "responder"
}

// RankEntry is one row of the score ledger.
type RankEntry struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// NameFits reports whether name is within MaxNameLength characters.
func NameFits(name string) bool {
	return utf8.RuneCountInString(name) <= MaxNameLength
}
