package stringpool

import (
	"testing"

	"github.com/davetcode/zilc/internal/token"
)

func TestAddDeduplicates(t *testing.T) {
	p := New()
	id1 := p.Add("hello", token.Location{Line: 1})
	id2 := p.Add("hello", token.Location{Line: 2})
	if id1 != id2 {
		t.Fatalf("expected the same ID for a repeated string, got %d and %d", id1, id2)
	}
	if p.Len() != 1 {
		t.Fatalf("expected exactly one pooled entry, got %d", p.Len())
	}
}

func TestAddTracksReferenceCountAndLocations(t *testing.T) {
	p := New()
	p.Add("hello", token.Location{Line: 1})
	p.Add("hello", token.Location{Line: 2})
	p.Add("hello", token.Location{Line: 3})
	entries := p.Entries()
	if entries[0].ReferenceCount != 3 {
		t.Fatalf("expected reference count 3, got %d", entries[0].ReferenceCount)
	}
	if len(entries[0].Locations) != 3 || entries[0].Locations[1].Line != 2 {
		t.Fatalf("unexpected locations: %v", entries[0].Locations)
	}
}

func TestAddAssignsStableInsertionOrder(t *testing.T) {
	p := New()
	idFoo := p.Add("foo", token.Location{})
	idBar := p.Add("bar", token.Location{})
	if idFoo != 0 || idBar != 1 {
		t.Fatalf("expected insertion-order IDs 0,1 got %d,%d", idFoo, idBar)
	}
	entries := p.Entries()
	if len(entries) != 2 || entries[0].Value != "foo" || entries[1].Value != "bar" {
		t.Fatalf("unexpected entries: %v", entries)
	}
}

func TestLookupMissing(t *testing.T) {
	p := New()
	if _, ok := p.Lookup("nope"); ok {
		t.Fatalf("expected lookup of an un-added string to fail")
	}
}
