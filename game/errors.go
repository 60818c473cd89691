package game

import "errors"

var (
	ErrRoomNotFound        = errors.New("room-not-found")
	ErrInsufficientPlayers = errors.New("insufficient-players")
	ErrNotDrawer           = errors.New("not-the-drawer")
	ErrDrawerCannotGuess   = errors.New("drawer-cannot-guess")
	ErrAlreadyGuessed      = errors.New("already-guessed")
	ErrInvalidWordChoice   = errors.New("invalid-word-choice")
	ErrWrongState          = errors.New("wrong-game-state")
	ErrNotJoined           = errors.New("not-joined")
)
