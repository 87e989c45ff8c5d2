// Package memory provides in-memory implementations of the store ports.
// Stored values are copied on the way in and out so callers cannot
// mutate stored state.
package memory
