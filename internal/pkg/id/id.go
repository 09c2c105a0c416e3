package id

import (
	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time and safe for use as DynamoDB partition keys. Ids made
// within the same millisecond still sort in generation order.
func New() string {
	return ulid.Make().String()
}

// Valid reports whether s has the shape of an identifier produced by New.
// Callers check this before any storage lookup.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
