package services

import (
	"container/list"
	"sync"
)

// EvictionPolicy decides which cached user indexes to drop.
// IndexCache calls it with its own lock held.
type EvictionPolicy interface {
	// Touch records a cache hit for key.
	Touch(key string)

	// Admit records that key was cached and returns keys to evict.
	Admit(key string) []string

	// Remove forgets key.
	Remove(key string)
}

// UnboundedPolicy never evicts.
type UnboundedPolicy struct{}

// Touch does nothing.
func (UnboundedPolicy) Touch(string) {}

// Admit evicts nothing.
func (UnboundedPolicy) Admit(string) []string { return nil }

// Remove does nothing.
func (UnboundedPolicy) Remove(string) {}

// LRUPolicy keeps at most capacity keys, evicting the least recently used.
type LRUPolicy struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front is most recent
	elems    map[string]*list.Element
}

// NewLRUPolicy creates an LRU policy. Capacity below 1 is treated as 1.
func NewLRUPolicy(capacity int) *LRUPolicy {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUPolicy{
		capacity: capacity,
		order:    list.New(),
		elems:    make(map[string]*list.Element),
	}
}

// Touch marks key as most recently used.
func (p *LRUPolicy) Touch(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.elems[key]; ok {
		p.order.MoveToFront(e)
	}
}

// Admit adds key and returns the keys pushed out by it.
func (p *LRUPolicy) Admit(key string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.elems[key]; ok {
		p.order.MoveToFront(e)
		return nil
	}
	p.elems[key] = p.order.PushFront(key)

	var evicted []string
	for p.order.Len() > p.capacity {
		oldest := p.order.Back()
		k := oldest.Value.(string)
		p.order.Remove(oldest)
		delete(p.elems, k)
		evicted = append(evicted, k)
	}
	return evicted
}

// Remove forgets key.
func (p *LRUPolicy) Remove(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.elems[key]; ok {
		p.order.Remove(e)
		delete(p.elems, key)
	}
}
