package mediactx

import "math"

// TimeRange is a [Start, End] interval of media time in seconds.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TimeRanges is an ordered list of media time intervals, as reported for buffered, seekable and played media.
type TimeRanges []TimeRange

// NewTimeRanges builds ranges from [start, end] pairs.
func NewTimeRanges(pairs ...[2]float64) TimeRanges {
	if len(pairs) == 0 {
		return nil
	}
	ranges := make(TimeRanges, 0, len(pairs))
	for _, p := range pairs {
		ranges = append(ranges, TimeRange{Start: p[0], End: p[1]})
	}
	return ranges
}

// Len returns the number of ranges.
func (r TimeRanges) Len() int {
	return len(r)
}

// Clone returns an independent copy.
func (r TimeRanges) Clone() TimeRanges {
	if r == nil {
		return nil
	}
	return append(TimeRanges(nil), r...)
}

// Equal compares element-wise.  A nil and an empty list are equal.
func (r TimeRanges) Equal(other TimeRanges) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// LastEnd returns the end of the final range.
func (r TimeRanges) LastEnd() (float64, bool) {
	if len(r) == 0 {
		return 0, false
	}
	return r[len(r)-1].End, true
}

// Contains reports whether t falls inside any range.
func (r TimeRanges) Contains(t float64) bool {
	for _, tr := range r {
		if t >= tr.Start && t <= tr.End {
			return true
		}
	}
	return false
}

// clampedEnd is the end of the last range, capped at duration.  Zero when there are no ranges.
func clampedEnd(r TimeRanges, duration float64) float64 {
	end, ok := r.LastEnd()
	if !ok {
		return 0
	}
	return math.Min(duration, end)
}
