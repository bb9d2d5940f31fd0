package sqlite

// Schema DDL for all tables.
const (
	createSequences = `CREATE TABLE sequences (
    seq_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createEntries = `CREATE TABLE entries (
    seq_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (seq_id, position),
    FOREIGN KEY (seq_id) REFERENCES sequences(seq_id) ON DELETE CASCADE
);`
)

// Index DDL for common queries.
const (
	idxEntriesName = `CREATE INDEX idx_entries_name ON entries(seq_id, name);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createSequences,
	createEntries,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxEntriesName,
}
