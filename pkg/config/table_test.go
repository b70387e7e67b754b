package config

import (
	"testing"
)

func TestBuildTable_PreservesOrder(t *testing.T) {
	rules := []PartitionRule{
		{Range: "0-127", Node: "A"},
		{Range: "64-255", Node: "B"},
	}

	table, err := BuildTable(rules)
	if err != nil {
		t.Fatalf("BuildTable error: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("table has %d entries, want 2", len(table))
	}
	if table[0].Owner != "A" || table[1].Owner != "B" {
		t.Fatalf("rule order lost: %s", table.String())
	}

	// первый матч принадлежит правилу, записанному раньше
	owner, ok := table.Lookup(100)
	if !ok || owner != "A" {
		t.Fatalf("Lookup(100) = %s, %v; want A", owner, ok)
	}
}

func TestBuildTable_BadRules(t *testing.T) {
	for _, rules := range [][]PartitionRule{
		{{Range: "z-a", Node: "A"}},
		{{Range: "", Node: "A"}},
		{{Range: "a-m", Node: ""}},
	} {
		if _, err := BuildTable(rules); err == nil {
			t.Fatalf("BuildTable(%v) should fail", rules)
		}
	}
}

func TestParseTable_YAML(t *testing.T) {
	payload := []byte(`
- range: a-m
  node: node1:8080
- range: n-z
  node: node2:8080
`)

	table, err := ParseTable(payload)
	if err != nil {
		t.Fatalf("ParseTable error: %v", err)
	}

	owner, ok := table.Lookup('q')
	if !ok || owner != "node2:8080" {
		t.Fatalf("Lookup('q') = %s, %v; want node2:8080", owner, ok)
	}

	// то, что нода прочитала, можно опубликовать обратно без потерь
	data, err := MarshalTable(table)
	if err != nil {
		t.Fatalf("MarshalTable error: %v", err)
	}
	again, err := ParseTable(data)
	if err != nil {
		t.Fatalf("ParseTable(round trip) error: %v", err)
	}
	if again.String() != table.String() {
		t.Fatalf("round trip changed table: %s vs %s", again.String(), table.String())
	}
}

func TestParseTable_Malformed(t *testing.T) {
	if _, err := ParseTable([]byte("normal: map\nnot: a list\n")); err == nil {
		t.Fatal("expected error for non-list payload")
	}
}
