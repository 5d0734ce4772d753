package store

import "github.com/oklog/ulid/v2"

// NewID returns a lexicographically time-ordered row id. Ids minted in the
// same millisecond still sort in creation order, which snapshot ordering and
// chip count tie-breaks rely on.
func NewID() string {
	return ulid.Make().String()
}
