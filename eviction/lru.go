// This file implements LRU eviction.

package eviction

// lruNode represents ONE key inside the LRU structure. We use a doubly-linked list to track usage order.
type lruNode[K comparable] struct {
	key K

	// prev points to the node that was used just after this one
	prev *lruNode[K]

	// next points to the node that was used just before this one
	next *lruNode[K]
}

// LRU tracks keys from most- to least-recently touched.
// Every operation is O(1): the map finds a node, the list reorders it.
type LRU[K comparable] struct {
	nodes map[K]*lruNode[K]

	// head points to the MOST recently used key
	head *lruNode[K]

	// tail points to the LEAST recently used key
	tail *lruNode[K]
}

var _ Policy[string] = (*LRU[string])(nil)

func NewLRU[K comparable]() *LRU[K] {
	return &LRU[K]{nodes: make(map[K]*lruNode[K])}
}

// OnGet marks a tracked key as most recently used. Unknown keys are ignored.
func (l *LRU[K]) OnGet(k K) {
	if n, ok := l.nodes[k]; ok {
		l.moveToFront(n)
	}
}

// OnPut marks k as most recently used, tracking it first if it is new.
// Replacing a value is a touch, so existing keys move to the front too.
func (l *LRU[K]) OnPut(k K) {
	if n, ok := l.nodes[k]; ok {
		l.moveToFront(n)
		return
	}
	n := &lruNode[K]{key: k}
	l.nodes[k] = n
	l.addFront(n)
}

// Evict removes the LEAST recently used key, which is always at the tail.
func (l *LRU[K]) Evict() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}

	k := l.tail.key
	l.remove(l.tail)
	delete(l.nodes, k)
	return k, true
}

// Remove stops tracking k.
func (l *LRU[K]) Remove(k K) {
	if n, ok := l.nodes[k]; ok {
		l.remove(n)
		delete(l.nodes, k)
	}
}

// Len returns how many keys are tracked.
func (l *LRU[K]) Len() int {
	return len(l.nodes)
}

// Keys returns the tracked keys from most to least recently used.
func (l *LRU[K]) Keys() []K {
	keys := make([]K, 0, len(l.nodes))
	for n := l.head; n != nil; n = n.next {
		keys = append(keys, n.key)
	}
	return keys
}

// addFront adds a node to the front of the linked list. This marks the node as "most recently used".
func (l *LRU[K]) addFront(n *lruNode[K]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n

	// If the list was empty, head and tail are the same
	if l.tail == nil {
		l.tail = n
	}
}

// remove unlinks a node, fixing head and tail when needed.
func (l *LRU[K]) remove(n *lruNode[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (l *LRU[K]) moveToFront(n *lruNode[K]) {
	if l.head == n {
		return
	}
	l.remove(n)
	l.addFront(n)
}
