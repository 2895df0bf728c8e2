package analysis

import (
	"sort"

	"sessionpulse/pkg/contracts/domain"
)

// Fuse inner-joins success and duration records on session id.
//
// Duration records are indexed by session id with last-write-wins on
// duplicates; duplicate ids are a data-quality issue and are resolved by
// input order, explicitly and testably. Success records are visited in
// their original order, unmatched ids on either side are dropped, and the
// result is stably sorted ascending by duration so ties keep join-output
// order. SequenceIndex reflects join-output order, assigned before the
// sort.
//
// An empty result is a legitimate outcome (empty inputs or disjoint id
// spaces), not an error; callers distinguish zero overlap from parse
// failure.
func Fuse(success []domain.SuccessRecord, duration []domain.DurationRecord) []domain.FusedRecord {
	byID := make(map[string]domain.DurationRecord, len(duration))
	for _, d := range duration {
		byID[d.SessionID] = d
	}

	fused := make([]domain.FusedRecord, 0, len(success))
	for _, s := range success {
		d, ok := byID[s.SessionID]
		if !ok {
			continue
		}
		fused = append(fused, domain.FusedRecord{
			SessionID:       s.SessionID,
			DurationSeconds: d.DurationSeconds,
			SuccessRate:     s.SuccessRate,
			SequenceIndex:   len(fused),
		})
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].DurationSeconds < fused[j].DurationSeconds
	})
	return fused
}
