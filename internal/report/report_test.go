package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pable/go-sb-features/internal/metrics"
	"github.com/pable/go-sb-features/internal/model"
	"github.com/pable/go-sb-features/internal/storage"
)

func feature(dist float64, density model.Opt[float64]) model.ShotFeatures {
	return model.ShotFeatures{
		Period:     1,
		Minute:     12,
		Second:     3,
		Team:       "Barcelona",
		Player:     "Lionel Messi",
		Outcome:    "Saved",
		XG:         model.Some(0.08),
		DistToGoal: model.Some(dist),
		Density:    density,
	}
}

func TestSummarize(t *testing.T) {
	feats := []model.ShotFeatures{
		feature(10, model.Some(0.5)),
		feature(20, model.None[float64]()),
		feature(30, model.Some(1.5)),
	}
	var dist, density, velocity Distribution
	for _, d := range Summarize(feats) {
		switch d.Name {
		case "dist_to_goal":
			dist = d
		case "density":
			density = d
		case "avg_shot_velocity":
			velocity = d
		}
	}

	if dist.N != 3 || dist.Mean != 20 || dist.Min != 10 || dist.Max != 30 || dist.Median != 20 {
		t.Errorf("dist_to_goal: %+v", dist)
	}
	if math.Abs(dist.StdDev-10) > 1e-9 {
		t.Errorf("dist_to_goal stddev: want 10, got %f", dist.StdDev)
	}
	if density.N != 2 || density.Mean != 1 {
		t.Errorf("density should skip absent values: %+v", density)
	}
	if velocity.N != 0 || !math.IsNaN(velocity.Mean) {
		t.Errorf("empty column: %+v", velocity)
	}
}

func TestWilsonCI(t *testing.T) {
	lo, hi := wilsonCI(0, 0)
	if lo != 0 || hi != 1 {
		t.Errorf("no shots: want [0, 1], got [%f, %f]", lo, hi)
	}
	lo, hi = wilsonCI(5, 10)
	if lo >= 0.5 || hi <= 0.5 || lo < 0 || hi > 1 {
		t.Errorf("5/10 interval should straddle 0.5: [%f, %f]", lo, hi)
	}
}

func TestSampleFlag(t *testing.T) {
	for n, want := range map[int]string{0: "VERY_LOW", 19: "VERY_LOW", 20: "LOW", 50: "OK"} {
		if got := sampleFlag(n); got != want {
			t.Errorf("sampleFlag(%d) = %s, want %s", n, got, want)
		}
	}
}

func TestPrintTables(t *testing.T) {
	feats := []model.ShotFeatures{feature(12.5, model.None[float64]())}
	feats[0].Diagnostic = "malformed_shot: bad entry"

	var buf bytes.Buffer
	PrintMatchSummary(&buf, model.MatchSummary{MatchID: 3788741, Shots: 1, DerivedAt: time.Now()})
	PrintShotTable(&buf, feats)
	PrintDefenderTable(&buf, feats)
	PrintFeatureSummary(&buf, feats)
	PrintTeamTotals(&buf, []storage.TeamShotTotals{{Team: "Barcelona", Shots: 4, Goals: 1, TotalXG: 0.9}})
	PrintMetrics(&buf, []metrics.Sample{{Name: "sbfeatures_pipeline_shots_total", Value: 3}})

	out := buf.String()
	for _, want := range []string{
		"3788741", "Lionel Messi", "12.5", dash, "malformed_shot", "dist_to_goal",
		"Barcelona", "25%", "sbfeatures_pipeline_shots_total",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
