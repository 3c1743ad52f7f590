package models

import "errors"

var (
	// ErrInvalidArgument is returned when a guild id, channel id or channel
	// name is empty.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrBindingExists is returned by a store when a binding for the same
	// (guild, channel) pair was committed first.
	ErrBindingExists = errors.New("channel binding already exists")
	// ErrNotFound is returned when a binding a store reported as existing
	// cannot be read back.
	ErrNotFound = errors.New("not found")
)
