package namedseq

import (
	"encoding/json"
	"fmt"
)

// jsonEntry is the wire form of one element.
type jsonEntry[T any] struct {
	Name  string `json:"name"`
	Value T      `json:"value"`
}

// MarshalJSON encodes the sequence as an ordered array of
// {"name": ..., "value": ...} objects.
func (s *NamedSequence[T]) MarshalJSON() ([]byte, error) {
	names := s.nameItems()
	out := make([]jsonEntry[T], len(s.elems))
	for i, v := range s.elems {
		out[i] = jsonEntry[T]{Name: names[i], Value: v}
	}
	return json.Marshal(out)
}

// UnmarshalJSON replaces the contents of s with the decoded array. On error
// s is left unchanged.
func (s *NamedSequence[T]) UnmarshalJSON(data []byte) error {
	var in []jsonEntry[T]
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("decode named sequence: %w", err)
	}
	s.Clear()
	s.Reserve(len(in))
	for _, e := range in {
		s.Append(e.Value, e.Name)
	}
	return nil
}
