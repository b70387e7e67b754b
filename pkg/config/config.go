package config

// Config - корневая структура конфигурации ноды.
// yaml теги для парсинга, validate теги для валидации.

type Config struct {
	Logger     LoggerConfig    `yaml:"logger" validate:"required"`
	Server     ServerConfig    `yaml:"http-server" validate:"required"`
	Node       NodeConfig      `yaml:"node" validate:"required"`
	Partitions []PartitionRule `yaml:"partitions"`
	Dispatch   DispatchConfig  `yaml:"dispatch"`
	ZooKeeper  ZKConfig        `yaml:"zookeeper"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	JSON  bool   `yaml:"json"`
}

type ServerConfig struct {
	Port                   int `yaml:"port" validate:"required,min=1,max=65535"`
	ReadHeaderTimeoutMs    int `yaml:"read_header_timeout_ms" validate:"min=0"`
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds" validate:"min=0"`
}

// NodeConfig describes identity of the node. ID doubles as the dispatch
// address (host:port), the same convention peers use in partition rules.
type NodeConfig struct {
	ID string `yaml:"id" validate:"required"`
}

// PartitionRule is one line of the routing table as written by an operator.
// Rule order in the file is authoritative: the first matching range wins.
type PartitionRule struct {
	Range string `yaml:"range" validate:"required"`
	Node  string `yaml:"node" validate:"required"`
}

// DispatchConfig controls the remote-hop client and the worker pool serving
// inbound hops.
type DispatchConfig struct {
	TimeoutMs int `yaml:"timeout_ms" validate:"min=0"`
	MaxHops   int `yaml:"max_hops" validate:"min=0"`
	Workers   int `yaml:"workers" validate:"min=0"`
	QueueSize int `yaml:"queue_size" validate:"min=0"`
}

// ZKConfig points at the ZooKeeper ensemble distributing partition tables.
// Empty Servers disables ZooKeeper and the node runs off its file table.
type ZKConfig struct {
	Servers  []string `yaml:"servers"`
	RootPath string   `yaml:"root_path"`
}

// Default returns a baseline development config: a single node owning the
// whole keyspace.
func Default() Config {
	return Config{
		Logger: LoggerConfig{
			Level: "DEBUG",
			JSON:  false,
		},
		Server: ServerConfig{
			Port:                   8080,
			ReadHeaderTimeoutMs:    1000,
			ShutdownTimeoutSeconds: 5,
		},
		Node: NodeConfig{ID: "localhost:8080"},
		Partitions: []PartitionRule{
			{Range: "0-255", Node: "localhost:8080"},
		},
		Dispatch: DispatchConfig{
			TimeoutMs: 5000,
			MaxHops:   16,
			Workers:   8,
			QueueSize: 64,
		},
		ZooKeeper: ZKConfig{RootPath: "/rangekv"},
	}
}
