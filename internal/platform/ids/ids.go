package ids

import "github.com/oklog/ulid/v2"

// New returns a lexicographically sortable record id.
func New() string {
	return ulid.Make().String()
}
