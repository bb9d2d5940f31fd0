// Package types defines the Store interface, its configuration, sequence
// metadata, and the standard errors for persisted named sequences.
package types
