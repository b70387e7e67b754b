package types

// Key is an immutable byte slice type alias used for clarity.
type Key = []byte

// Value is an immutable byte slice type alias used for clarity.
type Value = []byte

// NodeID identifies a node in a cluster. It is opaque to the router:
// two IDs are either equal or not, nothing else is assumed.
type NodeID string

// PartitionValue is the scalar derived from a key to find its owning range.
type PartitionValue = byte
