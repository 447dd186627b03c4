package storage

import (
	"fmt"
	"strings"

	"github.com/pable/go-sb-features/internal/model"
)

// TeamShotTotals holds summed shot features for one team across matches.
type TeamShotTotals struct {
	Team            string
	Shots           int
	Goals           int
	TotalXG         float64
	AvgDistToGoal   float64
	AvgDensity      float64 // over shots with a freeze-frame
	WithFreezeFrame int
}

// ShotFeaturesForMatches returns the shot rows of the given matches, ordered by match
// and then match clock.
func (db *DB) ShotFeaturesForMatches(matchIDs []int) ([]model.ShotFeatures, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM shot_features
		WHERE match_id IN (%s)
		ORDER BY match_id, period, elapsed_time, idx`,
		featureColumns, placeholders(len(matchIDs)))

	rows, err := db.conn.Query(query, intArgs(matchIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ShotFeatures
	for rows.Next() {
		var f model.ShotFeatures
		if err := rows.Scan(featureDest(&f)...); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// TeamTotals aggregates shot rows per team across the given matches, ordered by
// total xG descending.
func (db *DB) TeamTotals(matchIDs []int) ([]TeamShotTotals, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT team,
		       COUNT(*),
		       SUM(CASE WHEN outcome = 'Goal' THEN 1 ELSE 0 END),
		       COALESCE(SUM(xg), 0),
		       COALESCE(AVG(dist_to_goal), 0),
		       COALESCE(AVG(density), 0),
		       COUNT(density)
		FROM shot_features
		WHERE match_id IN (%s)
		GROUP BY team
		ORDER BY 4 DESC, team`,
		placeholders(len(matchIDs)))

	rows, err := db.conn.Query(query, intArgs(matchIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TeamShotTotals
	for rows.Next() {
		var t TeamShotTotals
		if err := rows.Scan(&t.Team, &t.Shots, &t.Goals, &t.TotalXG,
			&t.AvgDistToGoal, &t.AvgDensity, &t.WithFreezeFrame); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func intArgs(ids []int) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// placeholders returns a comma-separated string of n "?" for SQL IN clauses,
// e.g. placeholders(3) → "?,?,?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// DBOverview holds store-wide counts for the summary command.
type DBOverview struct {
	Matches       int
	Events        int
	Shots         int
	FailedShots   int
	FirstDerived  string
	LatestDerived string
}

// Overview returns store-wide counts.
func (db *DB) Overview() (DBOverview, error) {
	var ov DBOverview
	err := db.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(events), 0),
		       COALESCE(SUM(shots), 0),
		       COALESCE(SUM(failed), 0),
		       COALESCE(MIN(derived_at), ''),
		       COALESCE(MAX(derived_at), '')
		FROM matches`).
		Scan(&ov.Matches, &ov.Events, &ov.Shots, &ov.FailedShots, &ov.FirstDerived, &ov.LatestDerived)
	return ov, err
}

// ShooterTotals holds per-player shot totals.
type ShooterTotals struct {
	Player  string
	Team    string
	Shots   int
	Goals   int
	TotalXG float64
	AvgDist float64
}

// TopShooters returns the players with the most stored shots.
func (db *DB) TopShooters(limit int) ([]ShooterTotals, error) {
	rows, err := db.conn.Query(`
		SELECT player, team,
		       COUNT(*),
		       SUM(CASE WHEN outcome = 'Goal' THEN 1 ELSE 0 END),
		       COALESCE(SUM(xg), 0),
		       COALESCE(AVG(dist_to_goal), 0)
		FROM shot_features
		GROUP BY player, team
		ORDER BY 3 DESC, 5 DESC, player
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShooterTotals
	for rows.Next() {
		var s ShooterTotals
		if err := rows.Scan(&s.Player, &s.Team, &s.Shots, &s.Goals, &s.TotalXG, &s.AvgDist); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary read query and returns column names and stringified rows.
// NULL cells are returned as empty strings.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
