// Package stringpool deduplicates the literal strings a compilation
// collects (TELL/PRINTI arguments, object descriptions, parser
// vocabulary) into one ordered table, addressable by a stable ID assigned
// at first sight.
package stringpool

import "github.com/davetcode/zilc/internal/token"

// Entry is one deduplicated string: its stable ID, the order it first
// appeared in, how many call sites referenced it, and where each of
// those references came from. ZSCII compression (compressed?/savings)
// is out of scope; that's a byte-encoding concern for whatever lowers
// these entries into a story file, not for the pool itself.
type Entry struct {
	ID             int
	Value          string
	ReferenceCount int
	Locations      []token.Location
}

// Pool maps string content to a stable insertion-order ID. Safe for
// concurrent use behind a single mutex guarding each logical operation,
// matching the discipline used by the other long-lived shared
// components (the macro Processor, the symbol Table).
type Pool struct {
	mu      chan struct{}
	byValue map[string]int
	entries []Entry
}

// New returns an empty Pool.
func New() *Pool {
	p := &Pool{mu: make(chan struct{}, 1), byValue: map[string]int{}}
	p.mu <- struct{}{}
	return p
}

func (p *Pool) lock()   { <-p.mu }
func (p *Pool) unlock() { p.mu <- struct{}{} }

// Add returns the ID for s, assigning a new one the first time s is seen
// and returning the existing ID on every subsequent call. loc records
// where this particular reference came from, for Entries' Locations.
func (p *Pool) Add(s string, loc token.Location) int {
	p.lock()
	defer p.unlock()
	if id, ok := p.byValue[s]; ok {
		e := &p.entries[id]
		e.ReferenceCount++
		e.Locations = append(e.Locations, loc)
		return id
	}
	id := len(p.entries)
	p.byValue[s] = id
	p.entries = append(p.entries, Entry{ID: id, Value: s, ReferenceCount: 1, Locations: []token.Location{loc}})
	return id
}

// Lookup returns the ID already assigned to s, if any.
func (p *Pool) Lookup(s string) (int, bool) {
	p.lock()
	defer p.unlock()
	id, ok := p.byValue[s]
	return id, ok
}

// Entries returns every pooled string in insertion order.
func (p *Pool) Entries() []Entry {
	p.lock()
	defer p.unlock()
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Len reports how many distinct strings are pooled.
func (p *Pool) Len() int {
	p.lock()
	defer p.unlock()
	return len(p.entries)
}
