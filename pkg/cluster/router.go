package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"rangekv/pkg/kverrors"
	"rangekv/pkg/partition"
	"rangekv/pkg/types"
)

// DefaultMaxHops bounds a forwarding chain. Every hop re-resolves with the
// target node's own table, so a healthy topology converges in a couple of
// hops; anything near the limit is a table cycle.
const DefaultMaxHops = 16

// Router resolves a key's owner from the partition table and executes the
// operation there: on this node through Local, on any other node through a
// dispatcher that re-enters routing on the remote side. Nodes may carry
// different tables; a hop is one step toward whoever the next table says.
type Router struct {
	Local         types.NodeID
	Executor      Executor
	NewDispatcher DialFunc
	PartitionOf   partition.PartitionFunc
	MaxHops       int

	mu    sync.RWMutex
	table partition.Table
}

func NewRouter(local types.NodeID, table partition.Table, exec Executor, dial DialFunc) *Router {
	return &Router{
		Local:         local,
		Executor:      exec,
		NewDispatcher: dial,
		table:         table,
	}
}

// Table returns the current table snapshot. Whole-table swap is the only
// mutation, so a snapshot taken once per call is stable for that call.
func (r *Router) Table() partition.Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table
}

// UpdateTable replaces the table wholesale, e.g. after a config reload.
// In-flight calls keep the snapshot they already took.
func (r *Router) UpdateTable(t partition.Table) {
	r.mu.Lock()
	r.table = t
	r.mu.Unlock()
	slog.Info("partition table updated", "node", r.Local, "entries", len(t), "table", t.String())
}

// Route resolves key and runs op on its owner, blocking until the result or
// failure is back. Failures come through exactly as the owner raised them.
func (r *Router) Route(ctx context.Context, key types.Key, op Operation) (string, error) {
	return r.route(ctx, RouteRequest{Key: key, Op: op})
}

// Serve handles a forwarded hop arriving from a peer node. Same resolution
// as Route, but the request keeps the hop count it arrived with.
func (r *Router) Serve(ctx context.Context, req RouteRequest) (string, error) {
	return r.route(ctx, req)
}

func (r *Router) route(ctx context.Context, req RouteRequest) (string, error) {
	if len(req.Key) == 0 {
		return "", fmt.Errorf("cluster: empty key: %w", kverrors.ErrInvalidArgument)
	}

	table := r.Table()
	value := r.partitionOf(req.Key)

	owner, ok := table.Lookup(value)
	if !ok {
		return "", &NoRouteError{Key: req.Key, Value: value, Table: table}
	}

	local := owner == r.Local
	r.log(req, owner, local)

	if local {
		return r.Executor.Execute(ctx, req)
	}

	if req.Hops >= r.maxHops() {
		return "", &RoutingLoopError{Key: req.Key, Hops: req.Hops}
	}

	if r.NewDispatcher == nil {
		return "", fmt.Errorf("cluster: no dispatcher configured, cannot reach %s", owner)
	}
	d, err := r.NewDispatcher(owner)
	if err != nil {
		return "", fmt.Errorf("cluster: create dispatcher for %s: %w", owner, err)
	}

	fwd := req
	fwd.Hops++
	return d.Dispatch(ctx, owner, fwd)
}

func (r *Router) partitionOf(key types.Key) byte {
	if r.PartitionOf != nil {
		return r.PartitionOf(key)
	}
	return partition.FirstByte(key)
}

func (r *Router) maxHops() int {
	if r.MaxHops > 0 {
		return r.MaxHops
	}
	return DefaultMaxHops
}

func (r *Router) log(req RouteRequest, owner types.NodeID, local bool) {
	where := "remote"
	if local {
		where = "local"
	}
	slog.Debug("route", "op", req.Op.Name, "key", string(req.Key), "owner", owner, "where", where, "hops", req.Hops)
}
