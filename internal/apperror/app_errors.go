package apperror

import "errors"

// Rule violations travel back to the move's author as the error text,
// so the messages here are the user-facing reason strings.
var (
	ErrNotYourTurn       = errors.New("not your turn")
	ErrPieceExhausted    = errors.New("piece exhausted")
	ErrCoverOwnPiece     = errors.New("cannot cover own piece")
	ErrCoverSameSize     = errors.New("cannot cover with same size")
	ErrCoverSmallerPiece = errors.New("only larger piece may cover")
	ErrSameCell          = errors.New("choose a different cell")
	ErrEmptySourceCell   = errors.New("no piece there")
	ErrCellOutOfRange    = errors.New("cell out of range")
)

// Protocol and session errors.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room full")
	ErrNotInRoom          = errors.New("not joined to a room")
	ErrGameNotInPlay      = errors.New("game is not in progress")
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrUnknownMoveType    = errors.New("unknown move type")
	ErrRoomIDsExhausted   = errors.New("could not allocate an unused room id")
)
