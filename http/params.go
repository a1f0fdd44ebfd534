package http

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Params is an insertion-ordered multi-valued parameter set for Query and
// URLEncoded. Unlike plain maps, keys are encoded in the order they were
// first added. The zero value is an empty set ready to use.
type Params struct {
	m *linkedhashmap.Map
}

// NewParams returns an empty Params.
func NewParams() *Params {
	return &Params{m: linkedhashmap.New()}
}

func (p *Params) init() {
	if p.m == nil {
		p.m = linkedhashmap.New()
	}
}

// Add appends values to key, creating it if needed.
func (p *Params) Add(key string, values ...string) *Params {
	p.init()
	existing := p.Get(key)
	merged := make([]string, 0, len(existing)+len(values))
	merged = append(merged, existing...)
	merged = append(merged, values...)
	p.m.Put(key, merged)
	return p
}

// Set replaces the values of key. An existing key keeps its position.
func (p *Params) Set(key string, values ...string) *Params {
	p.init()
	p.m.Put(key, append([]string(nil), values...))
	return p
}

// Del removes key.
func (p *Params) Del(key string) *Params {
	if p.m != nil {
		p.m.Remove(key)
	}
	return p
}

// Get returns a copy of the values stored under key.
func (p *Params) Get(key string) []string {
	if p == nil || p.m == nil {
		return nil
	}
	v, ok := p.m.Get(key)
	if !ok {
		return nil
	}
	return append([]string(nil), v.([]string)...)
}

// Keys returns keys in insertion order.
func (p *Params) Keys() []string {
	if p == nil || p.m == nil {
		return nil
	}
	raw := p.m.Keys()
	keys := make([]string, len(raw))
	for i, k := range raw {
		keys[i] = k.(string)
	}
	return keys
}

// Len returns the number of distinct keys.
func (p *Params) Len() int {
	if p == nil || p.m == nil {
		return 0
	}
	return p.m.Size()
}

// Encode renders the parameters with the default component encoding.
func (p *Params) Encode() string {
	s, _ := encodeValues(p, NewComponentEncoder)
	return s
}
