package domain

// SaveStatus is the outcome of persisting a single extracted item.
type SaveStatus string

const (
	SaveInserted SaveStatus = "inserted" // New row written
	SaveSkipped  SaveStatus = "skipped"  // Duplicate key or unusable item
	SaveFailed   SaveStatus = "failed"   // Database rejected the row
)

// SaveOutcome reports what happened to one item during a save call.
// A batch save returns one outcome per item; the call itself errors
// only when the database is unreachable.
type SaveOutcome struct {
	ID     string     `json:"id"`
	Status SaveStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
}

// CountInserted returns the number of inserted outcomes.
func CountInserted(outcomes []SaveOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == SaveInserted {
			n++
		}
	}
	return n
}

// AllPersisted reports whether every outcome is inserted or skipped.
func AllPersisted(outcomes []SaveOutcome) bool {
	for _, o := range outcomes {
		if o.Status == SaveFailed {
			return false
		}
	}
	return true
}
