package apperror

import "errors"

var (
	ErrGameFinished      = errors.New("game is already finished")
	ErrGameIsNotStarted  = errors.New("game is not started")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrConnectionLost    = errors.New("peer connection lost")
	ErrIllegalRemoteMove = errors.New("illegal move received from peer")
)
