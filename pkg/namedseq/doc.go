// Package namedseq provides NamedSequence, an ordered sequence in which every
// element carries a name, with copy-on-write sharing of the name buffer.
//
// Copying a sequence (Clone, Assign) deep-copies the elements but shares the
// names. The names are copied only when one of the sharing sequences is about
// to mutate, so read-mostly copies stay cheap. Name lookup is a linear scan
// returning the first match; this is not an associative container.
//
// A NamedSequence is not safe for concurrent use. This includes distinct
// sequences that share a name buffer: if any of them mutates while another
// reads or mutates, the behavior is undefined. Callers that share sequences
// across goroutines must hand each goroutine its own Clone and synchronize
// access to any single instance.
package namedseq

// Version is the module release version.
const Version = "0.1.0"
