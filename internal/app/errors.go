package app

import "errors"

var (
	ErrNoTable   = errors.New("no table open")
	ErrLastTable = errors.New("cannot remove the last table")
	ErrEmptyCopy = errors.New("copy buffer is empty")
	ErrNoColumn  = errors.New("no visible column under the cursor")

	ErrUnknownColumn = errors.New("no such column")
)
