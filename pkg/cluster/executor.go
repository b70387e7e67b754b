package cluster

import (
	"context"
	"fmt"

	"rangekv/pkg/kverrors"
	"rangekv/pkg/types"
)

// OpFunc handles one named operation against a key.
type OpFunc func(ctx context.Context, key types.Key, args []string) (string, error)

// LocalExecutor runs operations on this node. It is a plain name registry:
// node_identity is always present, kv ops are wired when a store is given,
// anything else can be registered by the embedding application.
type LocalExecutor struct {
	node types.NodeID
	ops  map[string]OpFunc
}

func NewLocalExecutor(node types.NodeID, kv KV) *LocalExecutor {
	e := &LocalExecutor{
		node: node,
		ops:  make(map[string]OpFunc),
	}

	e.Register(OpNodeIdentity, func(context.Context, types.Key, []string) (string, error) {
		return string(node), nil
	})

	if kv != nil {
		e.Register(OpGet, func(_ context.Context, key types.Key, _ []string) (string, error) {
			v, ok, err := kv.GetString(string(key))
			if err != nil {
				return "", err
			}
			if !ok {
				return "", fmt.Errorf("get %q: %w", key, kverrors.ErrNotFound)
			}
			return v, nil
		})
		e.Register(OpPut, func(_ context.Context, key types.Key, args []string) (string, error) {
			if len(args) != 1 {
				return "", fmt.Errorf("put %q: want 1 arg, got %d: %w", key, len(args), kverrors.ErrInvalidArgument)
			}
			return "", kv.PutString(string(key), args[0])
		})
		e.Register(OpDelete, func(_ context.Context, key types.Key, _ []string) (string, error) {
			return "", kv.Delete(string(key))
		})
	}

	return e
}

// Register installs or replaces a handler. Not safe to call once the
// executor started serving requests.
func (e *LocalExecutor) Register(name string, fn OpFunc) {
	e.ops[name] = fn
}

func (e *LocalExecutor) Execute(ctx context.Context, req RouteRequest) (string, error) {
	fn, ok := e.ops[req.Op.Name]
	if !ok {
		return "", fmt.Errorf("cluster: unknown operation %q: %w", req.Op.Name, kverrors.ErrInvalidArgument)
	}
	return fn(ctx, req.Key, req.Op.Args)
}
