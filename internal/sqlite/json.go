// JSON record structures that define the JSONL data file format.
package sqlite

import "encoding/json"

// JSONL file names in DataDir.
const (
	sequencesJSONL = "sequences.jsonl"
	entriesJSONL   = "entries.jsonl"
)

// sequenceJSON represents a sequence in sequences.jsonl.
type sequenceJSON struct {
	SeqID     string `json:"seq_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// entryJSON represents one element in entries.jsonl. Value holds the element
// payload as embedded JSON.
type entryJSON struct {
	SeqID    string          `json:"seq_id"`
	Position int             `json:"position"`
	Name     string          `json:"name"`
	Value    json.RawMessage `json:"value"`
}
