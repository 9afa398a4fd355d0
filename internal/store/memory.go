package store

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MemoryStore is an in-process Store used by tests and by local development
// without a database. Values round-trip through JSON on write so readers see
// the same shapes a real database returns: map[string]any, []any, float64.
type MemoryStore struct {
	mu      sync.RWMutex
	root    map[string]any
	entropy *ulid.MonotonicEntropy
	clock   func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		root:    make(map[string]any),
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		clock:   time.Now,
	}
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// lookup walks the tree without mutating it. The second result is false when
// the path does not resolve to a value.
func (s *MemoryStore) lookup(path string) (any, bool) {
	var node any = s.root
	for _, seg := range splitPath(path) {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// ensureParent materializes intermediate maps down to the parent of path and
// returns that parent map with the final segment.
func (s *MemoryStore) ensureParent(path string) (map[string]any, string) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, ""
	}
	node := s.root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}
	return node, segs[len(segs)-1]
}

func normalize(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get decodes the value at path into v. Absent paths leave v untouched.
func (s *MemoryStore) Get(ctx context.Context, path string, v any) error {
	if err := ctx.Err(); err != nil {
		return wrapError("get", path, err)
	}
	s.mu.RLock()
	node, ok := s.lookup(path)
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	raw, err := json.Marshal(node)
	if err != nil {
		return wrapError("get", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return wrapError("get", path, err)
	}
	return nil
}

// Push writes value under a fresh lexically sortable child key.
func (s *MemoryStore) Push(ctx context.Context, path string, value any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", wrapError("push", path, err)
	}
	normalized, err := normalize(value)
	if err != nil {
		return "", wrapError("push", path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.ToLower(ulid.MustNew(ulid.Timestamp(s.clock()), s.entropy).String())
	parent, last := s.ensureParent(path)
	if parent == nil {
		s.root[id] = normalized
		return id, nil
	}
	switch existing := parent[last].(type) {
	case map[string]any:
		existing[id] = normalized
	case []any:
		// Legacy arrays become maps keyed by index, the way the real
		// database stores them once a push key lands next to them.
		child := make(map[string]any, len(existing)+1)
		for i, item := range existing {
			if item == nil {
				continue
			}
			child[strconv.Itoa(i)] = item
		}
		child[id] = normalized
		parent[last] = child
	default:
		parent[last] = map[string]any{id: normalized}
	}
	return id, nil
}

// Set replaces the value at path.
func (s *MemoryStore) Set(ctx context.Context, path string, value any) error {
	if err := ctx.Err(); err != nil {
		return wrapError("set", path, err)
	}
	normalized, err := normalize(value)
	if err != nil {
		return wrapError("set", path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, last := s.ensureParent(path)
	if parent == nil {
		root, ok := normalized.(map[string]any)
		if !ok {
			return wrapError("set", path, errRootNotObject)
		}
		s.root = root
		return nil
	}
	parent[last] = normalized
	return nil
}

// Update merges fields into the value at path, replacing it with a map when
// the current value is not one.
func (s *MemoryStore) Update(ctx context.Context, path string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return wrapError("update", path, err)
	}
	normalized, err := normalize(fields)
	if err != nil {
		return wrapError("update", path, err)
	}
	merged := normalized.(map[string]any)
	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.root
	if parent, last := s.ensureParent(path); parent != nil {
		child, ok := parent[last].(map[string]any)
		if !ok {
			child = make(map[string]any)
			parent[last] = child
		}
		target = child
	}
	for k, v := range merged {
		if v == nil {
			delete(target, k)
			continue
		}
		target[k] = v
	}
	return nil
}

// Delete removes the value at path.
func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return wrapError("delete", path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, last := s.ensureParent(path)
	if parent == nil {
		s.root = make(map[string]any)
		return nil
	}
	delete(parent, last)
	return nil
}

var errRootNotObject = errors.New("root value must be an object")
