package cache

import (
	"testing"

	"github.com/kolkov/cachesim/internal/cachesim/addr"
)

func TestArraySetsAreIndependent(t *testing.T) {
	a := NewArray()
	s0 := a.SetFor(0)
	s1 := a.SetFor(1)
	s0.InstallMiss(10, 0)
	if _, ok := s1.Lookup(10); ok {
		t.Fatal("tag installed in set 0 visible in set 1")
	}
	if got := len(a.sets); got != addr.NumSets {
		t.Fatalf("array has %d sets, want %d", got, addr.NumSets)
	}
}
