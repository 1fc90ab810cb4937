package tictactoe

import "github.com/rocketscienceinc/tictactoe-p2p/internal/entity"

// WinCombos are the rows, columns and diagonals of the board.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// CheckWin reports whether mark owns a complete line.
func CheckWin(board entity.Board, mark string) bool {
	if !entity.IsMark(mark) {
		return false
	}

	for _, combo := range WinCombos {
		if board[combo[0]] == mark && board[combo[1]] == mark && board[combo[2]] == mark {
			return true
		}
	}

	return false
}

// IsDraw reports a full board without a winner.
func IsDraw(board entity.Board) bool {
	if CheckWin(board, entity.PlayerX) || CheckWin(board, entity.PlayerO) {
		return false
	}

	return isFull(board)
}

// Result returns the winning mark, entity.PlayerTie or "" while the game continues.
// A win is checked before a draw, so the move that fills the board with a line wins.
func Result(board entity.Board) string {
	for _, mark := range [...]string{entity.PlayerX, entity.PlayerO} {
		if CheckWin(board, mark) {
			return mark
		}
	}

	if isFull(board) {
		return entity.PlayerTie
	}

	return ""
}

func isFull(board entity.Board) bool {
	for _, cell := range board {
		if cell == entity.EmptyCell {
			return false
		}
	}
	return true
}
