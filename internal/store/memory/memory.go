// Package memory provides in-memory implementations of every repository
// contract. It backs unit tests and throwaway runs that do not need a
// database; semantics (dedup keys, upsert behavior, ordering) match the
// postgres store.
package memory

import "time"

// dateKey collapses a timestamp to its calendar day, the granularity every
// dedup key in the store uses.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
