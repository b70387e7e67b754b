package config

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"rangekv/pkg/partition"
	"rangekv/pkg/types"
)

// BuildTable turns ordered rules into a partition table, preserving rule
// order. Overlaps are not rejected: first match wins at lookup time, and
// the file order is the operator's tie-break.
func BuildTable(rules []PartitionRule) (partition.Table, error) {
	table := make(partition.Table, 0, len(rules))
	for i, rule := range rules {
		lo, hi, err := partition.ParseRange(rule.Range)
		if err != nil {
			return nil, fmt.Errorf("config: partition rule %d: %w", i, err)
		}
		if rule.Node == "" {
			return nil, fmt.Errorf("config: partition rule %d: missing node", i)
		}
		table = append(table, partition.Entry{
			Lo:    lo,
			Hi:    hi,
			Owner: types.NodeID(rule.Node),
		})
	}
	return table, nil
}

// ParseTable decodes a standalone YAML rule list, the payload format of the
// ZooKeeper table znode.
func ParseTable(data []byte) (partition.Table, error) {
	var rules []PartitionRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("config: parse table: %w", err)
	}
	return BuildTable(rules)
}

// MarshalTable is the inverse of ParseTable. Bounds are written as decimal
// byte values, which ParseRange round-trips.
func MarshalTable(t partition.Table) ([]byte, error) {
	rules := make([]PartitionRule, len(t))
	for i, e := range t {
		rules[i] = PartitionRule{
			Range: fmt.Sprintf("%d-%d", e.Lo, e.Hi),
			Node:  string(e.Owner),
		}
	}
	data, err := yaml.Marshal(rules)
	if err != nil {
		return nil, fmt.Errorf("config: marshal table: %w", err)
	}
	return data, nil
}
