package pipeline

import (
	"context"

	"github.com/pable/go-sb-features/internal/model"
)

type possessionKey struct{ match, possession int }

type span struct{ start, end float64 }

// possessionSpans is the first pass: min and max elapsed time per possession.
func possessionSpans(b *Batch) map[possessionKey]span {
	spans := make(map[possessionKey]span)
	for i := range b.Records {
		r := &b.Records[i]
		t, ok := r.Timing.ElapsedTime.Get()
		if !ok {
			continue
		}
		k := possessionKey{r.MatchID, r.Possession}
		s, seen := spans[k]
		if !seen {
			spans[k] = span{start: t, end: t}
			continue
		}
		if t < s.start {
			s.start = t
		}
		if t > s.end {
			s.end = t
		}
		spans[k] = s
	}
	return spans
}

// applyPossession is the second pass: broadcast each span back onto its rows by key.
func applyPossession(_ context.Context, _ *Pipeline, b *Batch) error {
	spans := possessionSpans(b)
	for i := range b.Records {
		r := &b.Records[i]
		r.PossTimes = model.PossessionTimes{}
		t, ok := r.Timing.ElapsedTime.Get()
		if !ok {
			continue
		}
		s := spans[possessionKey{r.MatchID, r.Possession}]
		r.PossTimes = model.PossessionTimes{
			StartOfPossession:   model.Some(s.start),
			TimeInPossession:    model.Some(t - s.start),
			TimeToPossessionEnd: model.Some(s.end - t),
		}
	}
	return nil
}
