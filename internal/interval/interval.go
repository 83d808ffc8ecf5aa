// Package interval is pure arithmetic over half-open time intervals.
package interval

import (
	"sort"
	"time"

	"github.com/joshharrison/timeloom/internal/task"
)

// Span is a half-open interval [Start, End).
type Span struct {
	Start time.Time
	End   time.Time
}

// Minutes returns the whole-minute length of the span.
func (s Span) Minutes() int {
	return int(s.End.Sub(s.Start) / time.Minute)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Clip carves the blocked intervals out of [windowStart, windowEnd) and
// returns the remaining available segments, disjoint and sorted by start.
// Each blocked interval replaces every overlapping segment with up to two
// remainders: the part before the block and the part after.
func Clip(windowStart, windowEnd time.Time, blocked []task.BlockedInterval) []Span {
	segs := []Span{{Start: windowStart, End: windowEnd}}

	for _, b := range blocked {
		var next []Span
		for _, s := range segs {
			if !Overlaps(s.Start, s.End, b.Start, b.End) {
				next = append(next, s)
				continue
			}
			if s.Start.Before(b.Start) {
				next = append(next, Span{Start: s.Start, End: b.Start})
			}
			if b.End.Before(s.End) {
				next = append(next, Span{Start: b.End, End: s.End})
			}
		}
		segs = next
	}

	sort.Slice(segs, func(i, j int) bool { return segs[i].Start.Before(segs[j].Start) })
	return segs
}
