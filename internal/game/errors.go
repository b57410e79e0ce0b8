package game

import "errors"

var (
	// ErrNotFound is returned when a referenced room, item, or player does
	// not exist. Callers treat the operation as a no-op.
	ErrNotFound = errors.New("not found")

	// ErrItemHeld is returned when a move would place an item in two
	// locations at once. The state is left unchanged.
	ErrItemHeld = errors.New("item already placed")

	// ErrCannotTake is returned when an item's definition forbids taking it.
	ErrCannotTake = errors.New("item cannot be taken")

	// ErrInventoryFull is returned when a player's inventory is at capacity.
	ErrInventoryFull = errors.New("inventory full")
)
