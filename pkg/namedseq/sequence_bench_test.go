package namedseq

import (
	"strconv"
	"testing"
)

func benchSequence(n int) *NamedSequence[int] {
	s := New[int]()
	s.Reserve(n)
	for i := range n {
		s.Append(i, "name-"+strconv.Itoa(i))
	}
	return s
}

func BenchmarkClone(b *testing.B) {
	src := benchSequence(1000)
	b.ReportAllocs()
	for b.Loop() {
		c := src.Clone()
		c.Release()
	}
}

func BenchmarkCloneThenAppend(b *testing.B) {
	src := benchSequence(1000)
	b.ReportAllocs()
	for b.Loop() {
		c := src.Clone()
		c.Append(-1, "extra")
		c.Release()
	}
}

func BenchmarkLookupLast(b *testing.B) {
	s := benchSequence(1000)
	for b.Loop() {
		if _, err := s.Lookup("name-999"); err != nil {
			b.Fatal(err)
		}
	}
}
