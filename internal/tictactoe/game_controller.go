package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-p2p/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/entity"
)

// ApplyMove is the only mutator of a game. It is used for local and remote moves alike.
// Turn discipline is the caller's concern, see ValidateLocalMove and ValidateRemoteMove.
func ApplyMove(gameInstance *entity.Game, mark string, cell int) error {
	if err := gameInstance.ConfirmOngoingState(); err != nil {
		return err
	}

	if !entity.IsMark(mark) {
		return fmt.Errorf("%w: %q", entity.ErrInvalidMark, mark)
	}

	if err := entity.ValidateCell(cell); err != nil {
		return err
	}

	if gameInstance.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	gameInstance.Board[cell] = mark
	updateGameStatus(gameInstance)

	return nil
}

// ValidateLocalMove - checks a move coming from local input before it is applied.
func ValidateLocalMove(gameInstance *entity.Game, cell int) error {
	if err := gameInstance.ConfirmOngoingState(); err != nil {
		return err
	}

	if err := entity.ValidateCell(cell); err != nil {
		return err
	}

	if gameInstance.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	if !gameInstance.IsMyTurn() {
		return apperror.ErrNotYourTurn
	}

	return nil
}

// ValidateRemoteMove - the same discipline the peer applies to itself, checked on our side.
func ValidateRemoteMove(gameInstance *entity.Game, mark string, cell int) error {
	if err := gameInstance.ConfirmOngoingState(); err != nil {
		return err
	}

	if mark != gameInstance.RivalSymbol() {
		return fmt.Errorf("%w: peer played %q", entity.ErrInvalidMark, mark)
	}

	if err := entity.ValidateCell(cell); err != nil {
		return err
	}

	if gameInstance.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if gameInstance.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// updateGameStatus - checks the game status after a move.
// The turn flips from its current owner, not from the mover.
func updateGameStatus(gameInstance *entity.Game) {
	switch winner := Result(gameInstance.Board); winner {
	case entity.PlayerX, entity.PlayerO:
		gameInstance.Winner = winner
		gameInstance.Status = entity.StatusFinished
		gameInstance.Turn = ""
	case entity.PlayerTie:
		gameInstance.Winner = entity.PlayerTie
		gameInstance.Status = entity.StatusFinished
		gameInstance.Turn = ""
	default:
		gameInstance.Turn = entity.Opponent(gameInstance.Turn)
	}
}
