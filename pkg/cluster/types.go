package cluster

import (
	"context"

	"rangekv/pkg/types"
)

// Operation names understood by the local executor.
const (
	OpGet          = "get"
	OpPut          = "put"
	OpDelete       = "delete"
	OpNodeIdentity = "node_identity"
)

// Operation is what the caller wants run against the key's owner.
type Operation struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
}

// RouteRequest is one hop of routing. Hops counts forwards already taken;
// it rides along on the wire so a chain of misconfigured tables fails fast
// instead of bouncing forever.
type RouteRequest struct {
	Key  types.Key `json:"key"`
	Op   Operation `json:"op"`
	Hops int       `json:"hops,omitempty"`
}

// Executor runs an operation on behalf of the router. The router picks the
// variant (local registry or a remote hop) from the partition table; callers
// never branch on locality themselves.
type Executor interface {
	Execute(ctx context.Context, req RouteRequest) (string, error)
}

// Dispatcher submits a routing hop to a remote node and blocks until the
// result or failure comes back.
type Dispatcher interface {
	Dispatch(ctx context.Context, owner types.NodeID, req RouteRequest) (string, error)
}

// DialFunc builds a Dispatcher for a target node.
type DialFunc func(target types.NodeID) (Dispatcher, error)

// KV is the node-local storage surface the executor's kv ops run against.
type KV interface {
	PutString(key, value string) error
	GetString(key string) (string, bool, error)
	Delete(key string) error
}
