package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"gonum.org/v1/gonum/stat"

	"github.com/pable/go-sb-features/internal/metrics"
	"github.com/pable/go-sb-features/internal/model"
	"github.com/pable/go-sb-features/internal/storage"
)

const dash = "—"

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func optF(o model.Opt[float64], format string) string {
	v, ok := o.Get()
	if !ok {
		return dash
	}
	return fmt.Sprintf(format, v)
}

func optI(o model.Opt[int]) string {
	v, ok := o.Get()
	if !ok {
		return dash
	}
	return strconv.Itoa(v)
}

func clock(f model.ShotFeatures) string {
	return fmt.Sprintf("P%d %02d:%02d", f.Period, f.Minute, f.Second)
}

// PrintMatchSummary prints a one-line summary header for the match.
func PrintMatchSummary(w io.Writer, s model.MatchSummary) {
	fmt.Fprintf(w, "\nMatch: %d  |  Events: %d  |  Shots: %d  |  Failed: %d  |  Derived: %s\n",
		s.MatchID, s.Events, s.Shots, s.Failed, s.DerivedAt.Format("2006-01-02 15:04"))
	if s.Source != "" {
		fmt.Fprintf(w, "Source: %s\n", s.Source)
	}
	fmt.Fprintln(w)
}

// PrintMatchList prints one row per stored match.
func PrintMatchList(w io.Writer, matches []model.MatchSummary) {
	table := newTable(w)
	table.Header("MATCH", "EVENTS", "SHOTS", "FAILED", "DERIVED", "SOURCE")
	for _, s := range matches {
		table.Append(
			strconv.Itoa(s.MatchID),
			strconv.Itoa(s.Events),
			strconv.Itoa(s.Shots),
			strconv.Itoa(s.Failed),
			s.DerivedAt.Format("2006-01-02 15:04"),
			s.Source,
		)
	}
	table.Render()
}

// PrintShotTable prints the location, keeper and angle features of each shot.
func PrintShotTable(w io.Writer, feats []model.ShotFeatures) {
	table := newTable(w)
	table.Header(
		"CLOCK", "TEAM", "PLAYER", "OUTCOME", "XG", "X", "Y",
		"DIST", "ANGLE", "GK_DIST", "GK_ANGLE", "DEV", "VEL", "ELAPSED", "IN_POSS",
	)
	for _, f := range feats {
		table.Append(
			clock(f),
			f.Team,
			f.Player,
			f.Outcome,
			optF(f.XG, "%.2f"),
			optF(f.X, "%.1f"),
			optF(f.Y, "%.1f"),
			optF(f.DistToGoal, "%.1f"),
			optF(f.AngleToGoal, "%.1f°"),
			optF(f.DistToKeeper, "%.1f"),
			optF(f.AngleToKeeper, "%.1f°"),
			optF(f.AngleDev, "%.1f°"),
			optF(f.AvgVelocity, "%.1f"),
			optF(f.ElapsedTime, "%.0fs"),
			optF(f.TimeInPossession, "%.1fs"),
		)
	}
	table.Render()
}

// PrintDefenderTable prints the freeze-frame pressure features of each shot.
// Shots without a freeze-frame show dashes; failed shots show their diagnostic.
func PrintDefenderTable(w io.Writer, feats []model.ShotFeatures) {
	table := newTable(w)
	table.Header(
		"CLOCK", "PLAYER", "DENSITY", "CONE_DENS", "IN_CONE", "NEAREST", "2ND",
		"GK_CONE", "ATT_AHEAD", "DEF_AHEAD", "AREA", "NOTE",
	)
	for _, f := range feats {
		table.Append(
			clock(f),
			f.Player,
			optF(f.Density, "%.3f"),
			optF(f.DensityInCone, "%.3f"),
			optI(f.DefendersInCone),
			optF(f.NearestDefender, "%.1f"),
			optF(f.SecondNearestDefender, "%.1f"),
			optI(f.KeeperConeDefenders),
			optI(f.AttackersBehindBall),
			optI(f.DefendersBehindBall),
			optF(f.DefendedArea, "%.0f"),
			f.Diagnostic,
		)
	}
	table.Render()
}

// featureColumn names a numeric shot feature for the distribution summary.
type featureColumn struct {
	name string
	get  func(model.ShotFeatures) model.Opt[float64]
}

var summaryColumns = []featureColumn{
	{"xG", func(f model.ShotFeatures) model.Opt[float64] { return f.XG }},
	{"dist_to_goal", func(f model.ShotFeatures) model.Opt[float64] { return f.DistToGoal }},
	{"angle_to_goal", func(f model.ShotFeatures) model.Opt[float64] { return f.AngleToGoal }},
	{"angle_deviation", func(f model.ShotFeatures) model.Opt[float64] { return f.AngleDev }},
	{"avg_shot_velocity", func(f model.ShotFeatures) model.Opt[float64] { return f.AvgVelocity }},
	{"density", func(f model.ShotFeatures) model.Opt[float64] { return f.Density }},
	{"density_in_cone", func(f model.ShotFeatures) model.Opt[float64] { return f.DensityInCone }},
	{"nearest_defender", func(f model.ShotFeatures) model.Opt[float64] { return f.NearestDefender }},
	{"defended_area", func(f model.ShotFeatures) model.Opt[float64] { return f.DefendedArea }},
	{"time_in_possession", func(f model.ShotFeatures) model.Opt[float64] { return f.TimeInPossession }},
}

// Distribution summarises the present values of one feature column.
type Distribution struct {
	Name                  string
	N                     int
	Mean, StdDev          float64
	Min, Median, P90, Max float64
}

// Summarize computes a Distribution for each numeric feature column. Absent values
// are skipped; a column with no values reports N=0 and NaN statistics.
func Summarize(feats []model.ShotFeatures) []Distribution {
	out := make([]Distribution, 0, len(summaryColumns))
	for _, col := range summaryColumns {
		var xs []float64
		for _, f := range feats {
			if v, ok := col.get(f).Get(); ok {
				xs = append(xs, v)
			}
		}
		d := Distribution{Name: col.name, N: len(xs)}
		if len(xs) == 0 {
			nan := math.NaN()
			d.Mean, d.StdDev, d.Min, d.Median, d.P90, d.Max = nan, nan, nan, nan, nan, nan
			out = append(out, d)
			continue
		}
		sort.Float64s(xs)
		d.Mean, d.StdDev = stat.MeanStdDev(xs, nil)
		d.Min, d.Max = xs[0], xs[len(xs)-1]
		d.Median = stat.Quantile(0.5, stat.Empirical, xs, nil)
		d.P90 = stat.Quantile(0.9, stat.Empirical, xs, nil)
		out = append(out, d)
	}
	return out
}

func sampleFlag(n int) string {
	switch {
	case n >= 50:
		return "OK"
	case n >= 20:
		return "LOW"
	default:
		return "VERY_LOW"
	}
}

// PrintFeatureSummary prints the distribution of each numeric feature across shots.
func PrintFeatureSummary(w io.Writer, feats []model.ShotFeatures) {
	table := newTable(w)
	table.Header("FEATURE", "N", "MEAN", "STDDEV", "MIN", "MEDIAN", "P90", "MAX", "SAMPLE")
	for _, d := range Summarize(feats) {
		if d.N == 0 {
			table.Append(d.Name, "0", dash, dash, dash, dash, dash, dash, sampleFlag(0))
			continue
		}
		stddev := dash
		if d.N > 1 {
			stddev = fmt.Sprintf("%.3f", d.StdDev)
		}
		table.Append(
			d.Name,
			strconv.Itoa(d.N),
			fmt.Sprintf("%.3f", d.Mean),
			stddev,
			fmt.Sprintf("%.3f", d.Min),
			fmt.Sprintf("%.3f", d.Median),
			fmt.Sprintf("%.3f", d.P90),
			fmt.Sprintf("%.3f", d.Max),
			sampleFlag(d.N),
		)
	}
	table.Render()
}

// wilsonCI computes the 95% Wilson score confidence interval for a proportion.
// Returns (lo, hi) as fractions in [0, 1].
func wilsonCI(hits, n int) (lo, hi float64) {
	if n == 0 {
		return 0, 1
	}
	z := 1.96
	p := float64(hits) / float64(n)
	nf := float64(n)
	denom := 1 + z*z/nf
	center := (p + z*z/(2*nf)) / denom
	half := z * math.Sqrt(p*(1-p)/nf+z*z/(4*nf*nf)) / denom
	return math.Max(0, center-half), math.Min(1, center+half)
}

// PrintTeamTotals prints per-team shot totals with the goal conversion rate and its
// 95% confidence interval.
func PrintTeamTotals(w io.Writer, totals []storage.TeamShotTotals) {
	table := newTable(w)
	table.Header("TEAM", "SHOTS", "GOALS", "XG", "CONV%", "CONV_CI", "AVG_DIST", "AVG_DENSITY", "FF_SHOTS")
	for _, t := range totals {
		conv := dash
		if t.Shots > 0 {
			conv = fmt.Sprintf("%.0f%%", 100*float64(t.Goals)/float64(t.Shots))
		}
		lo, hi := wilsonCI(t.Goals, t.Shots)
		density := dash
		if t.WithFreezeFrame > 0 {
			density = fmt.Sprintf("%.3f", t.AvgDensity)
		}
		table.Append(
			t.Team,
			strconv.Itoa(t.Shots),
			strconv.Itoa(t.Goals),
			fmt.Sprintf("%.2f", t.TotalXG),
			conv,
			fmt.Sprintf("%.0f–%.0f%%", 100*lo, 100*hi),
			fmt.Sprintf("%.1f", t.AvgDistToGoal),
			density,
			strconv.Itoa(t.WithFreezeFrame),
		)
	}
	table.Render()
}

// PrintRows prints the result of a raw query. NULL cells arrive as empty strings.
func PrintRows(w io.Writer, cols []string, rows [][]string) {
	table := newTable(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

// PrintMetrics prints a snapshot of the pipeline metrics.
func PrintMetrics(w io.Writer, samples []metrics.Sample) {
	table := newTable(w)
	table.Header("METRIC", "LABELS", "VALUE", "COUNT")
	for _, s := range samples {
		keys := make([]string, 0, len(s.Labels))
		for k := range s.Labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		labels := make([]string, len(keys))
		for i, k := range keys {
			labels[i] = k + "=" + s.Labels[k]
		}
		count := ""
		if s.Count > 0 {
			count = strconv.FormatUint(s.Count, 10)
		}
		table.Append(s.Name, strings.Join(labels, ","), strconv.FormatFloat(s.Value, 'f', -1, 64), count)
	}
	table.Render()
}
