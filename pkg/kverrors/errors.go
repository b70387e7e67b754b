package kverrors

import "errors"

var (
	ErrNotFound        = errors.New("rangekv: not found")
	ErrClosed          = errors.New("rangekv: closed")
	ErrInvalidArgument = errors.New("rangekv: invalid argument")

	// ErrDispatchTimeout marks a remote hop that ran out of deadline. It is
	// a distinct kind so callers can tell "the owner said no" from "the
	// owner never answered".
	ErrDispatchTimeout = errors.New("rangekv: dispatch timeout")

	// ErrSaturated is returned by the worker pool when its queue is full.
	ErrSaturated = errors.New("rangekv: worker pool saturated")
)
