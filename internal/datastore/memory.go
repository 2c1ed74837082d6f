package datastore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps records in process memory. Values are held as encoded
// JSON so callers never share maps with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	kinds map[string]map[int64][]byte
	next  map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		kinds: make(map[string]map[int64][]byte),
		next:  make(map[string]int64),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key Key) (*Entity, error) {
	if !key.valid() || key.Incomplete() {
		return nil, ErrInvalidKey
	}

	s.mu.RLock()
	data, ok := s.kinds[key.Kind][key.ID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	props, err := decodeProperties(data)
	if err != nil {
		return nil, err
	}
	return &Entity{Key: key, Properties: props}, nil
}

func (s *MemoryStore) Put(ctx context.Context, e *Entity) (Key, error) {
	if e == nil || !e.Key.valid() {
		return Key{}, ErrInvalidKey
	}
	data, err := encodeProperties(e.Properties)
	if err != nil {
		return Key{}, fmt.Errorf("encode properties: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := e.Key
	if key.Incomplete() {
		s.next[key.Kind]++
		key.ID = s.next[key.Kind]
	} else if key.ID > s.next[key.Kind] {
		s.next[key.Kind] = key.ID
	}

	records, ok := s.kinds[key.Kind]
	if !ok {
		records = make(map[int64][]byte)
		s.kinds[key.Kind] = records
	}
	records[key.ID] = data
	return key, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key Key) error {
	if !key.valid() {
		return ErrInvalidKey
	}
	s.mu.Lock()
	delete(s.kinds[key.Kind], key.ID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, q *Query) ([]*Entity, error) {
	s.mu.RLock()
	records := s.kinds[q.Kind]
	ids := make([]int64, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	results := make([]*Entity, 0, len(ids))
	for _, id := range ids {
		props, err := decodeProperties(records[id])
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		if q.Matches(props) {
			results = append(results, &Entity{Key: NewKey(q.Kind, id), Properties: props})
		}
	}
	s.mu.RUnlock()
	return results, nil
}

// RunInTransaction runs fn against a private copy of the store and publishes
// the copy only when fn succeeds. Writers are serialised for the duration.
func (s *MemoryStore) RunInTransaction(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &MemoryStore{
		kinds: make(map[string]map[int64][]byte, len(s.kinds)),
		next:  make(map[string]int64, len(s.next)),
	}
	for kind, records := range s.kinds {
		copied := make(map[int64][]byte, len(records))
		for id, data := range records {
			copied[id] = data
		}
		tx.kinds[kind] = copied
	}
	for kind, n := range s.next {
		tx.next[kind] = n
	}

	if err := fn(tx); err != nil {
		return err
	}

	s.kinds = tx.kinds
	s.next = tx.next
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
