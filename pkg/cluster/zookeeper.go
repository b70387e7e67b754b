package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"

	"rangekv/pkg/config"
	"rangekv/pkg/partition"
	"rangekv/pkg/types"
)

// ZKTableSource distributes partition tables through ZooKeeper: the table
// lives as a YAML rule list in one znode, nodes watch it and swap their
// router's table on change. Each node also registers itself as an ephemeral
// znode so operators can see who is alive.
type ZKTableSource struct {
	conn     *zk.Conn
	rootPath string
	local    types.NodeID
}

// servers: ["zk1:2181", "zk2:2181"]
func NewZKTableSource(servers []string, rootPath string, local types.NodeID) (*ZKTableSource, error) {
	conn, _, err := zk.Connect(servers, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("zk connect: %w", err)
	}
	return &ZKTableSource{
		conn:     conn,
		rootPath: rootPath,
		local:    local,
	}, nil
}

func (s *ZKTableSource) Close() error {
	s.conn.Close()
	return nil
}

func (s *ZKTableSource) tablePath() string {
	return s.rootPath + "/table"
}

// RegisterSelf создаёт ephemeral-узел для текущей ноды
func (s *ZKTableSource) RegisterSelf() error {
	// Ждём, пока клиент реально подключится к ZK
	if err := s.waitConnected(10 * time.Second); err != nil {
		return err
	}

	if err := s.ensurePath(s.rootPath + "/nodes"); err != nil {
		return fmt.Errorf("ensure nodes path: %w", err)
	}

	nodePath := fmt.Sprintf("%s/nodes/%s", s.rootPath, s.local)

	_, err := s.conn.Create(nodePath, nil, zk.FlagEphemeral, zk.WorldACL(zk.PermAll))
	if err != nil && err != zk.ErrNodeExists {
		return fmt.Errorf("create ephemeral node: %w", err)
	}

	slog.Info("registered node in zookeeper", "path", nodePath)
	return nil
}

// PublishTable writes the table znode. Meant for operator tooling; nodes
// themselves only read.
func (s *ZKTableSource) PublishTable(t partition.Table) error {
	data, err := config.MarshalTable(t)
	if err != nil {
		return err
	}

	if err := s.ensurePath(s.rootPath); err != nil {
		return fmt.Errorf("ensure root path: %w", err)
	}

	path := s.tablePath()
	_, err = s.conn.Create(path, data, 0, zk.WorldACL(zk.PermAll))
	if err == zk.ErrNodeExists {
		_, err = s.conn.Set(path, data, -1)
	}
	if err != nil {
		return fmt.Errorf("write table znode: %w", err)
	}
	return nil
}

// FetchTable reads and parses the current table znode.
func (s *ZKTableSource) FetchTable() (partition.Table, error) {
	data, _, err := s.conn.Get(s.tablePath())
	if err != nil {
		return nil, fmt.Errorf("read table znode: %w", err)
	}
	return config.ParseTable(data)
}

// RunWatch запускает цикл: следит за изменениями табличного znode и
// обновляет таблицу в Router
func (s *ZKTableSource) RunWatch(ctx context.Context, r *Router) {
	go func() {
		for {
			data, _, ch, err := s.conn.GetW(s.tablePath())
			if err != nil {
				slog.Warn("zk table watch error", "err", err)
				select {
				case <-time.After(2 * time.Second):
					continue
				case <-ctx.Done():
					return
				}
			}

			table, err := config.ParseTable(data)
			if err != nil {
				// битый znode: оставляем текущую таблицу
				slog.Error("zk table znode is malformed, keeping current table", "err", err)
			} else {
				r.UpdateTable(table)
			}

			select {
			case ev := <-ch:
				slog.Debug("zk table event", "type", ev.Type.String())
				// просто продолжаем цикл и перечитываем таблицу
			case <-ctx.Done():
				slog.Info("zk table watch stopped")
				return
			}
		}
	}()
}

func (s *ZKTableSource) ensurePath(path string) error {
	parts := strings.Split(path, "/")
	cur := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		cur = cur + "/" + p
		exists, _, err := s.conn.Exists(cur)
		if err != nil {
			return err
		}
		if !exists {
			_, err = s.conn.Create(cur, nil, 0, zk.WorldACL(zk.PermAll))
			if err != nil && err != zk.ErrNodeExists {
				return err
			}
		}
	}
	return nil
}

func (s *ZKTableSource) waitConnected(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		st := s.conn.State()
		if st == zk.StateConnected || st == zk.StateHasSession {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("zk: not connected after %s, state=%v", timeout, st)
		}
		time.Sleep(200 * time.Millisecond)
	}
}
