package cluster

import (
	"errors"
	"fmt"

	"rangekv/pkg/kverrors"
	"rangekv/pkg/partition"
	"rangekv/pkg/types"
)

var (
	ErrNoRoute     = errors.New("cluster: no route found")
	ErrRoutingLoop = errors.New("cluster: routing loop detected")
)

// NoRouteError reports a partition value no table entry covers. The message
// carries the offending key and the whole table: when this fires the table
// is wrong, and the operator fixing it needs both in front of them.
type NoRouteError struct {
	Key   types.Key
	Value byte
	Table partition.Table
}

func (e *NoRouteError) Error() string {
	return fmt.Sprintf("cluster: no route for key %q (partition value 0x%02x), table %s",
		e.Key, e.Value, e.Table)
}

func (e *NoRouteError) Is(target error) bool {
	return target == ErrNoRoute
}

// RoutingLoopError reports a forwarding chain that exceeded the hop limit,
// which on an immutable table means the node tables point at each other.
type RoutingLoopError struct {
	Key  types.Key
	Hops int
}

func (e *RoutingLoopError) Error() string {
	return fmt.Sprintf("cluster: routing loop for key %q after %d hops", e.Key, e.Hops)
}

func (e *RoutingLoopError) Is(target error) bool {
	return target == ErrRoutingLoop
}

// ErrorKind is the wire classification of a routing failure. Remote hops
// report it alongside the message so the caller-side error matches the same
// errors.Is checks as a local failure would.
type ErrorKind string

const (
	KindNone      ErrorKind = ""
	KindNotFound  ErrorKind = "not_found"
	KindNoRoute   ErrorKind = "no_route"
	KindLoop      ErrorKind = "routing_loop"
	KindSaturated ErrorKind = "saturated"
	KindTimeout   ErrorKind = "timeout"
	KindInternal  ErrorKind = "internal"
)

// KindOf classifies err for the wire.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, kverrors.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNoRoute):
		return KindNoRoute
	case errors.Is(err, ErrRoutingLoop):
		return KindLoop
	case errors.Is(err, kverrors.ErrSaturated):
		return KindSaturated
	case errors.Is(err, kverrors.ErrDispatchTimeout):
		return KindTimeout
	default:
		return KindInternal
	}
}

// remoteError re-raises a classified remote failure in the caller's context.
// The message passes through unchanged and errors.Is keeps working, so the
// caller cannot tell a remote failure from a local one.
type remoteError struct {
	kind ErrorKind
	msg  string
}

// RemoteError rebuilds an error from its wire classification.
func RemoteError(kind ErrorKind, msg string) error {
	return &remoteError{kind: kind, msg: msg}
}

func (e *remoteError) Error() string {
	return e.msg
}

func (e *remoteError) Is(target error) bool {
	switch e.kind {
	case KindNotFound:
		return target == kverrors.ErrNotFound
	case KindNoRoute:
		return target == ErrNoRoute
	case KindLoop:
		return target == ErrRoutingLoop
	case KindSaturated:
		return target == kverrors.ErrSaturated
	case KindTimeout:
		return target == kverrors.ErrDispatchTimeout
	}
	return false
}
