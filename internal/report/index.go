package report

// orderedIndex assigns dense positions to keys in insertion order.
type orderedIndex struct {
	keys []string
	pos  map[string]int
}

func newOrderedIndex() *orderedIndex {
	return &orderedIndex{pos: make(map[string]int)}
}

// Add inserts key if unseen and returns its position. added is false when the
// key was already present, in which case its first position is returned.
func (x *orderedIndex) Add(key string) (pos int, added bool) {
	if p, ok := x.pos[key]; ok {
		return p, false
	}
	p := len(x.keys)
	x.keys = append(x.keys, key)
	x.pos[key] = p
	return p, true
}

func (x *orderedIndex) IndexOf(key string) (int, bool) {
	p, ok := x.pos[key]
	return p, ok
}

func (x *orderedIndex) Len() int {
	return len(x.keys)
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (x *orderedIndex) Keys() []string {
	return x.keys
}
