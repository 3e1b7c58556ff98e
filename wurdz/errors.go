package wurdz

import "errors"

var (
	ErrInvalidConfig    = errors.New("invalid session config")
	ErrNotInGame        = errors.New("you are not in this game")
	ErrGameNotPlaying   = errors.New("game is not in progress")
	ErrGameNotWaiting   = errors.New("game already started")
	ErrEmptySubmission  = errors.New("no tiles to submit")
	ErrPoolExhausted    = errors.New("not enough tiles in pool to exchange")
	ErrTileNotInHand    = errors.New("tile not in your hand")
	ErrTileNotOnBoard   = errors.New("tile not on your board")
	ErrPositionMismatch = errors.New("tile position mismatch")
	ErrUnknownDirection = errors.New("unknown scroll direction")
)
