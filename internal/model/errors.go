package model

import "errors"

var (
	ErrBadSquare     = errors.New("invalid square")
	ErrIllegalMove   = errors.New("illegal move")
	ErrNothingToUndo = errors.New("no move to undo")
	ErrGameOver      = errors.New("game is over")
	ErrNoLegalMoves  = errors.New("no legal moves")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrMissingKing   = errors.New("king missing from board")
	ErrNotAuthorized = errors.New("not authorized to observe this game")
)
