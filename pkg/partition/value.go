package partition

// PartitionFunc reduces a key to its partition value. The router resolves
// ownership of the value, never of the whole key.
type PartitionFunc func(key []byte) byte

// FirstByte is the default strategy: the first byte of the key decides the
// partition. Deliberately simple; a hash or longer prefix plugs in through
// the same signature.
func FirstByte(key []byte) byte {
	return key[0]
}
