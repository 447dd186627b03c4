package pipeline

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/pable/go-sb-features/internal/model"
)

// periodNominalEndMs is the regulation end of periods 1..4 on the match clock.
var periodNominalEndMs = map[int]int64{
	1: 45 * 60_000,
	2: 90 * 60_000,
	3: 105 * 60_000,
	4: 120 * 60_000,
}

// subSecondMs extracts the millisecond part of an "HH:MM:SS.fff" timestamp.
// An empty timestamp or one without a fraction contributes zero.
func subSecondMs(ts string) (int64, bool) {
	if ts == "" {
		return 0, true
	}
	_, frac, found := strings.Cut(ts, ".")
	if !found || frac == "" {
		return 0, true
	}
	if len(frac) > 3 {
		frac = frac[:3]
	}
	for len(frac) < 3 {
		frac += "0"
	}
	ms, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || ms < 0 {
		return 0, false
	}
	return ms, true
}

// rawElapsedMs is the match-clock time of an event within its period.
func rawElapsedMs(e *model.Event) model.Opt[int64] {
	ms, ok := subSecondMs(e.Timestamp)
	if !ok {
		return model.None[int64]()
	}
	return model.Some(int64(e.Minute)*60_000 + int64(e.Second)*1000 + ms)
}

type matchPeriod struct{ match, period int }

// periodOffsets accumulates stoppage time: the offset of each period is the sum of
// (max raw time - nominal end) over all earlier periods of the same match.
func periodOffsets(b *Batch) map[matchPeriod]int64 {
	maxRaw := make(map[matchPeriod]int64)
	periods := make(map[int][]int)
	for i := range b.Records {
		r := &b.Records[i]
		raw, ok := r.Timing.ElapsedMs.Get()
		if !ok {
			continue
		}
		k := matchPeriod{r.MatchID, r.Period}
		prev, seen := maxRaw[k]
		if !seen {
			periods[r.MatchID] = append(periods[r.MatchID], r.Period)
		}
		if !seen || raw > prev {
			maxRaw[k] = raw
		}
	}

	offsets := make(map[matchPeriod]int64, len(maxRaw))
	for match, ps := range periods {
		sort.Ints(ps)
		var running int64
		for _, period := range ps {
			k := matchPeriod{match, period}
			offsets[k] = running
			if nominal, ok := periodNominalEndMs[period]; ok {
				running += maxRaw[k] - nominal
			}
		}
	}
	return offsets
}

func applyElapsedTime(_ context.Context, _ *Pipeline, b *Batch) error {
	for i := range b.Records {
		r := &b.Records[i]
		r.Timing = model.Timing{ElapsedMs: rawElapsedMs(&r.Event)}
	}
	offsets := periodOffsets(b)
	for i := range b.Records {
		r := &b.Records[i]
		off := offsets[matchPeriod{r.MatchID, r.Period}]
		r.Timing.ElapsedTime = model.Map(r.Timing.ElapsedMs, func(ms int64) float64 {
			return float64(ms+off) / 1000
		})
	}
	return nil
}
