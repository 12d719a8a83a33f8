package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/modsync/pkg/errors"
)

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	records map[string]map[string][]byte
	roots   map[string]string
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]map[string][]byte),
		roots:   make(map[string]string),
	}
}

func (m *Memory) Get(ctx context.Context, category, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.records[category][id]
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "no %s record %q", category, id)
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Put(ctx context.Context, category, id string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cat, ok := m.records[category]
	if !ok {
		cat = make(map[string][]byte)
		m.records[category] = cat
	}
	cat[id] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Scan(ctx context.Context, category, prefix string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for id, v := range m.records[category] {
		if strings.HasPrefix(id, prefix) {
			out = append(out, Record{ID: id, Value: append([]byte(nil), v...)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetRoot(ctx context.Context, kind string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.roots[kind]
	return id, ok, nil
}

func (m *Memory) CompareAndSwapRoot(ctx context.Context, kind, prev, next string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.roots[kind]
	if (prev == "" && ok) || (prev != "" && cur != prev) {
		return false, nil
	}
	m.roots[kind] = next
	return true, nil
}

func (m *Memory) Delete(ctx context.Context, category, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records[category], id)
	return nil
}

func (m *Memory) DeleteRoot(ctx context.Context, kind, prev string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.roots[kind]; !ok || cur != prev {
		return false, nil
	}
	delete(m.roots, kind)
	return true, nil
}

func (m *Memory) Close() error { return nil }
