package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pable/go-sb-features/internal/model"
)

func TestSubSecondMs(t *testing.T) {
	cases := []struct {
		ts   string
		want int64
		ok   bool
	}{
		{"00:12:03.123", 123, true},
		{"00:12:03.5", 500, true},
		{"00:12:03.123456", 123, true},
		{"00:12:03", 0, true},
		{"00:12:03.", 0, true},
		{"", 0, true},
		{"00:12:03.ab", 0, false},
	}
	for _, tc := range cases {
		got, ok := subSecondMs(tc.ts)
		assert.Equal(t, tc.ok, ok, tc.ts)
		assert.Equal(t, tc.want, got, tc.ts)
	}
}

func TestElapsed_NoStoppage(t *testing.T) {
	e := passEvent(nil, nil, atTime(2, 46, 0, "00:01:00.000"))
	b := runAll(t, e)

	r := mustLookup(t, b, e.ID)
	assert.Equal(t, model.Some(int64(2_760_000)), r.Timing.ElapsedMs)
	assert.Equal(t, some(2760), r.Timing.ElapsedTime)
}

func TestElapsed_FirstHalfStoppageShiftsSecondHalf(t *testing.T) {
	kickoff := passEvent(nil, nil, atTime(1, 0, 0, "00:00:00.000"))
	late := passEvent(nil, nil, atTime(1, 47, 0, "00:47:00.000"))
	restart := passEvent(nil, nil, atTime(2, 45, 0, "00:00:00.000"))
	b := runAll(t, kickoff, late, restart)

	assert.Equal(t, some(0), mustLookup(t, b, kickoff.ID).Timing.ElapsedTime)
	assert.Equal(t, some(2820), mustLookup(t, b, late.ID).Timing.ElapsedTime)
	assert.Equal(t, some(2820), mustLookup(t, b, restart.ID).Timing.ElapsedTime)
}

func TestElapsed_OffsetsAccumulateThroughExtraTime(t *testing.T) {
	events := []model.Event{
		passEvent(nil, nil, atTime(1, 46, 0, "")),  // +1 min
		passEvent(nil, nil, atTime(2, 93, 0, "")),  // +3 min
		passEvent(nil, nil, atTime(3, 106, 0, "")), // +1 min
		passEvent(nil, nil, atTime(4, 121, 30, "")),
		passEvent(nil, nil, atTime(5, 0, 0, "")),
	}
	b := runAll(t, events...)

	want := []float64{
		46 * 60,
		(93 + 1) * 60,
		(106 + 4) * 60,
		(121+5)*60 + 30,
		(5+1.5)*60,
	}
	for i, e := range events {
		assert.Equal(t, some(want[i]), mustLookup(t, b, e.ID).Timing.ElapsedTime, "period %d", e.Period)
	}
}

func TestElapsed_MonotonicWithinMatch(t *testing.T) {
	var events []model.Event
	for period, minutes := range map[int][]int{1: {0, 20, 45, 48}, 2: {45, 70, 90, 94}} {
		for _, m := range minutes {
			events = append(events, passEvent(nil, nil, atTime(period, m, 0, "")))
		}
	}
	b := runAll(t, events...)

	maxFirst, minSecond := -1.0, 1e9
	for _, r := range b.Records {
		v, ok := r.Timing.ElapsedTime.Get()
		assert.True(t, ok)
		if r.Period == 1 && v > maxFirst {
			maxFirst = v
		}
		if r.Period == 2 && v < minSecond {
			minSecond = v
		}
	}
	assert.LessOrEqual(t, maxFirst, minSecond)
}

func TestElapsed_MatchesAreIndependent(t *testing.T) {
	long := passEvent(nil, nil, atTime(1, 50, 0, ""), inMatch(1))
	a := passEvent(nil, nil, atTime(2, 45, 0, ""), inMatch(1))
	b2 := passEvent(nil, nil, atTime(2, 45, 0, ""), inMatch(2))
	b := runAll(t, long, a, b2)

	assert.Equal(t, some(3000), mustLookup(t, b, a.ID).Timing.ElapsedTime)
	assert.Equal(t, some(2700), mustLookup(t, b, b2.ID).Timing.ElapsedTime)
}

func TestElapsed_BadTimestampIsAbsent(t *testing.T) {
	bad := passEvent(nil, nil, atTime(1, 10, 0, "00:10:00.x"))
	b := runAll(t, bad)

	r := mustLookup(t, b, bad.ID)
	assert.False(t, r.Timing.ElapsedMs.Valid())
	assert.False(t, r.Timing.ElapsedTime.Valid())
	assert.Equal(t, model.PossessionTimes{}, r.PossTimes)
}
