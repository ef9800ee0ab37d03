package patient

import (
	"fmt"
	"sort"
)

// The visit ledger derives display orderings from the stored visit set
// without ever mutating it. Canonical display order is strictly descending
// by timestamp (most recent first); stored visit numbers are assigned once
// at creation and the ledger only verifies them.

// SortedDesc returns a copy of visits sorted descending by timestamp.
// Equal timestamps fall back to visit number so the order stays total.
func SortedDesc(visits []*Visit) []*Visit {
	out := make([]*Visit, len(visits))
	copy(out, visits)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].VisitNumber > out[j].VisitNumber
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Latest returns the most recent visit, or nil for an empty set. This is
// the projection used for list-view summary rows; it is derived, never
// persisted.
func Latest(visits []*Visit) *Visit {
	if len(visits) == 0 {
		return nil
	}
	return SortedDesc(visits)[0]
}

// HistoryEntry pairs a visit with the number it is displayed under in the
// descending detail view: the newest visit carries the highest number and
// the oldest carries 1.
type HistoryEntry struct {
	*Visit
	DisplayNumber int `json:"display_number"`
}

// History returns the full visit history in display order. The display
// number at descending position idx is total-idx; when that disagrees with
// the visit number assigned at creation the ledger is corrupt (an
// out-of-order write happened) and the mismatch is reported alongside the
// entries rather than hidden.
func History(visits []*Visit) ([]HistoryEntry, error) {
	sorted := SortedDesc(visits)
	total := len(sorted)

	entries := make([]HistoryEntry, total)
	var corrupt error
	for idx, v := range sorted {
		display := total - idx
		entries[idx] = HistoryEntry{Visit: v, DisplayNumber: display}
		if corrupt == nil && v.VisitNumber != display {
			corrupt = fmt.Errorf("%w: visit %s numbered %d but holds position %d of %d",
				ErrLedgerCorrupt, v.ID, v.VisitNumber, display, total)
		}
	}
	return entries, corrupt
}
