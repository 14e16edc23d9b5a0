// Package memory implementa los repositorios en proceso. Evalúa los mismos
// predicados de la política que el adaptador PostgreSQL; se usa en tests y con
// STORE_DRIVER=memory.
package memory

import (
	"sort"
	"sync"
	"time"
)

// table mapa protegido de registros por id. Los valores se copian al entrar y
// salir para que los llamadores no compartan memoria con el store.
type table[T any] struct {
	mu    sync.RWMutex
	rows  map[string]T
	clone func(T) T
}

func newTable[T any](clone func(T) T) *table[T] {
	return &table[T]{rows: make(map[string]T), clone: clone}
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.clone(v), true
}

func (t *table[T]) put(id string, v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[id] = t.clone(v)
}

func (t *table[T]) exists(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.rows[id]
	return ok
}

func (t *table[T]) remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rows, id)
}

// update aplica fn sobre el registro almacenado bajo lock de escritura.
func (t *table[T]) update(id string, fn func(T) T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.rows[id]
	if !ok {
		return false
	}
	t.rows[id] = fn(v)
	return true
}

// filter devuelve copias de los registros que cumplen keep, ordenados por created.
func (t *table[T]) filter(keep func(T) bool, created func(T) time.Time) []T {
	t.mu.RLock()
	out := make([]T, 0, len(t.rows))
	for _, v := range t.rows {
		if keep(v) {
			out = append(out, t.clone(v))
		}
	}
	t.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return created(out[i]).Before(created(out[j])) })
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}
