package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"rangekv/internal/http"
	"rangekv/pkg/cluster"
	"rangekv/pkg/config"
	"rangekv/pkg/store"
	"rangekv/pkg/types"
	"rangekv/pkg/workpool"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configPath := flag.String("config", "config.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := initConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	initLogger(&cfg)

	if err := run(ctx, cfg); err != nil {
		fmt.Printf("rangekv: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	local := types.NodeID(cfg.Node.ID)

	table, err := config.BuildTable(cfg.Partitions)
	if err != nil {
		return fmt.Errorf("build partition table: %w", err)
	}

	db := store.New()
	defer db.Close()

	executor := cluster.NewLocalExecutor(local, db)

	dialTimeout := time.Duration(cfg.Dispatch.TimeoutMs) * time.Millisecond
	router := cluster.NewRouter(local, table, executor, cluster.DialHTTP(dialTimeout))
	router.MaxHops = cfg.Dispatch.MaxHops

	pool := workpool.New(cfg.Dispatch.Workers, cfg.Dispatch.QueueSize)
	pool.Start(ctx)
	defer pool.Stop()

	server := http.NewServer(router, pool, strconv.Itoa(cfg.Server.Port))
	if err := server.Start(); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}
	defer func() { _ = server.Stop() }()

	// --- ZooKeeper table distribution (optional) ---
	if len(cfg.ZooKeeper.Servers) > 0 {
		source, err := cluster.NewZKTableSource(cfg.ZooKeeper.Servers, cfg.ZooKeeper.RootPath, local)
		if err != nil {
			return fmt.Errorf("connect to zookeeper: %w", err)
		}
		defer source.Close()

		if err := source.RegisterSelf(); err != nil {
			return fmt.Errorf("register node in zookeeper: %w", err)
		}
		source.RunWatch(ctx, router)
	}

	<-ctx.Done()
	return nil
}
