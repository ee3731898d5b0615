package store

import (
	"context"
	"strconv"
	"sync"
)

// MemoryStore is the in-process fallback backend. It is constructed and
// injected explicitly; there is no package-level state. Semantics mirror
// the redis implementation: LPush prepends, sets deduplicate, HGetAll of
// a missing key returns an empty map.
type MemoryStore struct {
	mu     sync.RWMutex
	hashes map[string]map[string]string
	lists  map[string][]string
	sets   map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hashes: make(map[string]map[string]string),
		lists:  make(map[string][]string),
		sets:   make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) HSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		s.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (s *MemoryStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.hashes[key]))
	for k, v := range s.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) HIncrBy(_ context.Context, key, field string, incr int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string)
		s.hashes[key] = h
	}
	cur, _ := strconv.ParseInt(h[field], 10, 64)
	cur += incr
	h[field] = strconv.FormatInt(cur, 10)
	return cur, nil
}

func (s *MemoryStore) LPush(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[key] = append([]string{value}, s.lists[key]...)
	return nil
}

func (s *MemoryStore) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.lists[key]
	n := int64(len(list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return []string{}, nil
	}

	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

func (s *MemoryStore) SAdd(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) SRem(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[key]
	if !ok {
		return nil
	}
	for _, m := range members {
		delete(set, m)
	}
	return nil
}

func (s *MemoryStore) SCard(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.sets[key])), nil
}

func (s *MemoryStore) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.sets[key]))
	for m := range s.sets[key] {
		out = append(out, m)
	}
	return out, nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.hashes, key)
		delete(s.lists, key)
		delete(s.sets, key)
	}
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
