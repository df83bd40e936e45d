package core

import "errors"

// Common errors.
var (
	// ErrNotFound signals that a lookup required a result and found none.
	// Store-level operations report "no match" in their results instead.
	ErrNotFound = errors.New("not found")

	// ErrUniqueness signals that an insert or update would duplicate a
	// record identifier or a normalized unique field.
	ErrUniqueness = errors.New("uniqueness violation")

	// ErrMalformedUpdate signals a structurally invalid update
	// specification, e.g. an $inc against a non-numeric field.
	ErrMalformedUpdate = errors.New("malformed update")

	// ErrCorruptStorage marks a durable unit that could not be decoded at
	// load time. It is recovered locally (the unit is reinitialized empty)
	// and logged; load paths never return it.
	ErrCorruptStorage = errors.New("corrupt storage")

	// ErrInvalidTransition signals a connection status change outside the
	// allowed state machine.
	ErrInvalidTransition = errors.New("invalid status transition")
)
