// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy

import (
	"fmt"

	"github.com/pdiddy/trivia-cards/pkg/types"
)

// CardinalityError reports a card whose record count does not match the
// taxonomy. It is fatal for the run: assigning categories by position
// without an exact count would mis-tag every record.
type CardinalityError struct {
	Expected int
	Actual   int

	// Pair is the zero-based index of the offending card pair.
	Pair int
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("pair %d: got %d records, taxonomy expects exactly %d", e.Pair, e.Actual, e.Expected)
}

// Reconcile returns a copy of records with record i assigned category i.
// Questions, answers, and identifiers are left as they are. pair is only
// used to label a CardinalityError.
func (t *Taxonomy) Reconcile(pair int, records []types.Record) ([]types.Record, error) {
	if len(records) != len(t.categories) {
		return nil, &CardinalityError{Expected: len(t.categories), Actual: len(records), Pair: pair}
	}
	out := make([]types.Record, len(records))
	for i, r := range records {
		r.Category = t.categories[i]
		out[i] = r
	}
	return out, nil
}
