// Package beats quantizes scene durations onto the pulse of a music track.
// Beat timestamps come from a Detector collaborator; the default detector is
// a simple energy-onset tracker good enough for the bundled placeholder
// music.
package beats

import (
	"math"
	"sort"

	"github.com/tanmayb/cinerender/internal/audio"
)

const (
	minBeatInterval = 0.3
	maxBeatInterval = 2.0
	minDuration     = 0.5
)

// Detector extracts ordered beat timestamps, in seconds, from a waveform.
type Detector interface {
	Detect(buf *audio.Buffer) ([]float64, error)
}

// AlignDurations snaps each duration to the nearest whole multiple of the
// beat unit, where the unit is the median inter-beat interval clamped to
// [0.3, 2.0] seconds. Each aligned duration uses at least one beat and never
// drops below half a second. Fewer than two beats leaves durations untouched.
func AlignDurations(durations []float64, beatTimes []float64) []float64 {
	out := make([]float64, len(durations))
	copy(out, durations)
	if len(beatTimes) < 2 {
		return out
	}

	unit := beatUnit(beatTimes)
	for i, d := range out {
		n := math.Round(d / unit)
		if n < 1 {
			n = 1
		}
		aligned := math.Round(n*unit*1000) / 1000
		if aligned < minDuration {
			aligned = minDuration
		}
		out[i] = aligned
	}
	return out
}

// beatUnit is the clamped median inter-beat interval.
func beatUnit(beatTimes []float64) float64 {
	intervals := make([]float64, 0, len(beatTimes)-1)
	for i := 1; i < len(beatTimes); i++ {
		intervals = append(intervals, beatTimes[i]-beatTimes[i-1])
	}
	sort.Float64s(intervals)

	var median float64
	mid := len(intervals) / 2
	if len(intervals)%2 == 1 {
		median = intervals[mid]
	} else {
		median = (intervals[mid-1] + intervals[mid]) / 2
	}

	if median < minBeatInterval {
		return minBeatInterval
	}
	if median > maxBeatInterval {
		return maxBeatInterval
	}
	return median
}
