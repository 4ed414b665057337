package internal

// LRU tracks recency of keys. It holds no values; the owner keeps its own
// map and asks LRU which key is the least recently used.
//
// LRU is not safe for concurrent use.
type LRU struct {
	order []string // oldest first
}

func NewLRU() *LRU {
	return &LRU{order: make([]string, 0, 8)}
}

// Touch moves key to the most recently used position, adding it if needed.
func (l *LRU) Touch(key string) {
	l.Remove(key)
	l.order = append(l.order, key)
}

// Remove drops key from the order. Missing keys are ignored.
func (l *LRU) Remove(key string) {
	for i, k := range l.order {
		if k == key {
			l.order = append(l.order[:i], l.order[i+1:]...)
			return
		}
	}
}

// Oldest returns the least recently used key.
func (l *LRU) Oldest() (string, bool) {
	if len(l.order) == 0 {
		return "", false
	}
	return l.order[0], true
}

func (l *LRU) Len() int {
	return len(l.order)
}

// Keys returns the keys oldest first.
func (l *LRU) Keys() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

func (l *LRU) Clear() {
	l.order = l.order[:0]
}
