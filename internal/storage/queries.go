package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pable/go-sb-features/internal/model"
)

// featureColumns is the shot_features column list, in the order featureArgs and
// featureDest produce values.
const featureColumns = `
	event_id, match_id, idx, period, minute, second, possession,
	team, player, outcome, xg,
	x, y, end_x, end_y, end_z,
	keeper_id, keeper_name, keeper_x, keeper_y,
	shooter_x, shooter_y, keeper_corr_x, keeper_corr_y,
	dist_to_goal, angle_to_goal, dist_to_keeper, angle_to_keeper,
	angle_deviation, avg_shot_velocity, dist_shooter_to_keeper,
	density, density_in_cone, defenders_in_cone,
	nearest_defender, second_nearest_defender, keeper_cone_defenders,
	attackers_behind_ball, defenders_behind_ball, defended_area,
	elapsed_time, start_of_possession, time_in_possession, time_to_possession_end,
	diagnostic`

const featureColumnCount = 45

func featureArgs(f *model.ShotFeatures) []any {
	return []any{
		f.EventID, f.MatchID, f.Index, f.Period, f.Minute, f.Second, f.Possession,
		f.Team, f.Player, f.Outcome, f.XG,
		f.X, f.Y, f.EndX, f.EndY, f.EndZ,
		f.KeeperID, f.KeeperName, f.KeeperX, f.KeeperY,
		f.ShooterX, f.ShooterY, f.KeeperCorrX, f.KeeperCorrY,
		f.DistToGoal, f.AngleToGoal, f.DistToKeeper, f.AngleToKeeper,
		f.AngleDev, f.AvgVelocity, f.DistToKeeperS,
		f.Density, f.DensityInCone, f.DefendersInCone,
		f.NearestDefender, f.SecondNearestDefender, f.KeeperConeDefenders,
		f.AttackersBehindBall, f.DefendersBehindBall, f.DefendedArea,
		f.ElapsedTime, f.StartOfPossession, f.TimeInPossession, f.TimeToPossessionEnd,
		f.Diagnostic,
	}
}

func featureDest(f *model.ShotFeatures) []any {
	return []any{
		&f.EventID, &f.MatchID, &f.Index, &f.Period, &f.Minute, &f.Second, &f.Possession,
		&f.Team, &f.Player, &f.Outcome, &f.XG,
		&f.X, &f.Y, &f.EndX, &f.EndY, &f.EndZ,
		&f.KeeperID, &f.KeeperName, &f.KeeperX, &f.KeeperY,
		&f.ShooterX, &f.ShooterY, &f.KeeperCorrX, &f.KeeperCorrY,
		&f.DistToGoal, &f.AngleToGoal, &f.DistToKeeper, &f.AngleToKeeper,
		&f.AngleDev, &f.AvgVelocity, &f.DistToKeeperS,
		&f.Density, &f.DensityInCone, &f.DefendersInCone,
		&f.NearestDefender, &f.SecondNearestDefender, &f.KeeperConeDefenders,
		&f.AttackersBehindBall, &f.DefendersBehindBall, &f.DefendedArea,
		&f.ElapsedTime, &f.StartOfPossession, &f.TimeInPossession, &f.TimeToPossessionEnd,
		&f.Diagnostic,
	}
}

// MatchExists returns true if a match with the given id is already stored.
func (db *DB) MatchExists(matchID int) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE match_id = ?", matchID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertMatch upserts a match record without disturbing its shot rows.
func (db *DB) InsertMatch(summary model.MatchSummary) error {
	derivedAt := summary.DerivedAt
	if derivedAt.IsZero() {
		derivedAt = time.Now()
	}
	_, err := db.conn.Exec(`
		INSERT INTO matches(match_id, source, events, shots, failed, derived_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(match_id) DO UPDATE SET
			source = excluded.source, events = excluded.events, shots = excluded.shots,
			failed = excluded.failed, derived_at = excluded.derived_at`,
		summary.MatchID, summary.Source, summary.Events, summary.Shots, summary.Failed,
		derivedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// InsertShotFeatures bulk-inserts shot feature rows in a transaction.
func (db *DB) InsertShotFeatures(feats []model.ShotFeatures) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT OR REPLACE INTO shot_features(%s)
		VALUES (%s)`, featureColumns, placeholders(featureColumnCount)))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range feats {
		if _, err := stmt.Exec(featureArgs(&feats[i])...); err != nil {
			return fmt.Errorf("insert shot_features for %s: %w", feats[i].EventID, err)
		}
	}
	return tx.Commit()
}

// ListMatches returns all stored match summaries, most recently derived first.
func (db *DB) ListMatches() ([]model.MatchSummary, error) {
	rows, err := db.conn.Query(`
		SELECT match_id, source, events, shots, failed, derived_at
		FROM matches ORDER BY derived_at DESC, match_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		s, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetMatch returns the stored summary for a match, or nil when it is unknown.
func (db *DB) GetMatch(matchID int) (*model.MatchSummary, error) {
	row := db.conn.QueryRow(`
		SELECT match_id, source, events, shots, failed, derived_at
		FROM matches WHERE match_id = ?`, matchID)
	s, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (model.MatchSummary, error) {
	var (
		s         model.MatchSummary
		derivedAt string
	)
	if err := row.Scan(&s.MatchID, &s.Source, &s.Events, &s.Shots, &s.Failed, &derivedAt); err != nil {
		return model.MatchSummary{}, err
	}
	t, err := time.Parse(time.RFC3339, derivedAt)
	if err != nil {
		return model.MatchSummary{}, fmt.Errorf("match %d derived_at: %w", s.MatchID, err)
	}
	s.DerivedAt = t
	return s, nil
}

// GetShotFeatures returns every shot row of a match in match-clock order.
func (db *DB) GetShotFeatures(matchID int) ([]model.ShotFeatures, error) {
	return db.ShotFeaturesForMatches([]int{matchID})
}

// DeleteMatch removes a match and its shot rows. It reports whether the match existed.
func (db *DB) DeleteMatch(matchID int) (bool, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM shot_features WHERE match_id = ?", matchID); err != nil {
		return false, fmt.Errorf("delete shot_features: %w", err)
	}
	res, err := tx.Exec("DELETE FROM matches WHERE match_id = ?", matchID)
	if err != nil {
		return false, fmt.Errorf("delete match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}
