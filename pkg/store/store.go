package store

import (
	"bytes"
	"sync/atomic"

	"github.com/zhangyunhao116/skipmap"

	"rangekv/pkg/kverrors"
)

type orderedMap = skipmap.FuncMap[[]byte, Item]

// Item is a stored record.
type Item struct {
	Key   []byte
	Value []byte
}

// Store is the node-local key-value engine behind the router's local
// executor. Byte-ordered concurrent map, nothing more: persistence,
// compaction and the rest of a real engine live elsewhere.
type Store struct {
	m      *orderedMap
	closed atomic.Bool
}

func New() *Store {
	return &Store{
		m: skipmap.NewFunc[[]byte, Item](func(a, b []byte) bool {
			return bytes.Compare(a, b) < 0
		}),
	}
}

func (s *Store) PutString(key, value string) error {
	if s.closed.Load() {
		return kverrors.ErrClosed
	}
	if key == "" {
		return kverrors.ErrInvalidArgument
	}
	k := []byte(key)
	s.m.Store(k, Item{Key: k, Value: []byte(value)})
	return nil
}

func (s *Store) GetString(key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, kverrors.ErrClosed
	}
	it, ok := s.m.Load([]byte(key))
	if !ok {
		return "", false, nil
	}
	return string(it.Value), true, nil
}

func (s *Store) Delete(key string) error {
	if s.closed.Load() {
		return kverrors.ErrClosed
	}
	s.m.Delete([]byte(key))
	return nil
}

// Len reports the number of live records.
func (s *Store) Len() int {
	return s.m.Len()
}

func (s *Store) Close() error {
	s.closed.Store(true)
	return nil
}
