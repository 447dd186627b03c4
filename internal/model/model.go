package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/pable/go-sb-features/internal/geom"
)

// Pitch geometry in StatsBomb units. The attacking goal is always at x = 120.
const (
	PitchLength = 120.0
	PitchWidth  = 80.0

	GoalX        = 120.0
	GoalY        = 40.0
	GoalPostLowY = 35.0
	GoalPostHiY  = 45.0
)

// Goal is the centre of the goal mouth.
var Goal = geom.Pt(GoalX, GoalY)

// EventType tags the kind of action an event describes.
type EventType string

const (
	TypePass          EventType = "Pass"
	TypeShot          EventType = "Shot"
	TypeCarry         EventType = "Carry"
	TypeBallReceipt   EventType = "Ball Receipt*"
	TypePressure      EventType = "Pressure"
	TypeStartingXI    EventType = "Starting XI"
	TypeHalfStart     EventType = "Half Start"
	TypeHalfEnd       EventType = "Half End"
	TypeGoalKeeper    EventType = "Goal Keeper"
	TypeUnknownAction EventType = ""
)

func (t EventType) String() string {
	if t == TypeUnknownAction {
		return "?"
	}
	return string(t)
}

// Ref is an id/name pair as used throughout the event feed.
type Ref struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Position is a player's role. ID 1 is the goalkeeper; 2..8 are the defensive line.
type Position Ref

const (
	PositionGoalkeeperID   = 1
	PositionGoalkeeperName = "Goalkeeper"
	PositionDefenderMinID  = 2
	PositionDefenderMaxID  = 8
)

// IsGoalkeeper reports whether the role is the goalkeeper.
func (p Position) IsGoalkeeper() bool {
	return p.Name == PositionGoalkeeperName || p.ID == PositionGoalkeeperID
}

// IsDefender reports whether the role id is in the outfield defensive range.
func (p Position) IsDefender() bool {
	return p.ID >= PositionDefenderMinID && p.ID <= PositionDefenderMaxID
}

// ---- Raw events as handed over by the loader ----

// Event is one on-ball action. Location fields are raw coordinate sequences of
// length 2 or 3 and nil when absent.
type Event struct {
	ID             uuid.UUID
	Index          int
	MatchID        int
	Period         int
	Minute, Second int
	Timestamp      string // "HH:MM:SS.mmm" within the period
	Possession     int
	PossessionTeam Ref
	Type           EventType
	Team           Ref
	Player         Ref
	Location       []float64
	Duration       Opt[float64]

	Pass *Pass // set only for passes
	Shot *Shot // set only for shots
}

// IsShot reports whether the event carries a shot sub-record.
func (e *Event) IsShot() bool { return e.Type == TypeShot && e.Shot != nil }

type Pass struct {
	EndLocation []float64
}

type Shot struct {
	EndLocation []float64
	Duration    Opt[float64]
	XG          Opt[float64] // provider expected-goals value, carried through untouched
	Outcome     string
	BodyPart    string
	Technique   string

	// FreezeFrame is nil when the feed has no snapshot for this shot.
	FreezeFrame []FreezeFramePlayer
	// FreezeFrameErr is set when the snapshot was present but could not be decoded.
	FreezeFrameErr error
}

// FreezeFramePlayer is one player's position at the instant of the shot.
type FreezeFramePlayer struct {
	Location []float64
	Teammate bool // relative to the shooter
	Position Position
	Player   Ref
}

// ---- Derived columns ----

// Coords holds a flattened coordinate sequence.
type Coords struct {
	X, Y, Z Opt[float64]
}

// Point returns the planar part when both coordinates are present.
func (c Coords) Point() Opt[geom.Point] {
	return Map2(c.X, c.Y, geom.Pt)
}

// Locations are the scalar location.*, pass.end_location.* and shot.end_location.* columns.
type Locations struct {
	Location Coords
	PassEnd  Coords
	ShotEnd  Coords
}

// Goalkeeper is the opposing keeper observed in a shot's freeze-frame.
type Goalkeeper struct {
	PlayerID Opt[int]
	Name     Opt[string]
	X, Y     Opt[float64]
}

// Point returns the keeper location when known.
func (g Goalkeeper) Point() Opt[geom.Point] { return Map2(g.X, g.Y, geom.Pt) }

// ShotAngles are the per-shot scalar features. Angles are in degrees.
type ShotAngles struct {
	// Shooter and keeper locations after the goal-centre correction. The raw
	// location and goalkeeper columns keep the observed values; distances and
	// angles are computed from these.
	ShooterX, ShooterY Opt[float64]
	KeeperX, KeeperY   Opt[float64]

	DistToGoal          Opt[float64]
	AngleToGoal         Opt[float64]
	DistToKeeper        Opt[float64]
	AngleToKeeper       Opt[float64]
	AngleDeviation      Opt[float64]
	AvgShotVelocity     Opt[float64]
	DistShooterToKeeper Opt[float64]
}

// PlayerClass is the classification of one freeze-frame entry against a shot's cones.
type PlayerClass struct {
	Player       Ref
	Position     Position
	Teammate     bool
	Location     geom.Point
	DistToBall   float64
	InCone       bool
	InKeeperCone bool
	Forward      bool // x >= shooter x
}

// ShotGeometry is the freeze-frame derived geometry of a single shot.
type ShotGeometry struct {
	ConeApex   geom.Point
	Cone       geom.Polygon
	KeeperCone geom.Polygon
	Players    []PlayerClass

	Density               float64
	DensityInCone         float64
	DefendersInCone       int
	NearestDefender       float64
	SecondNearestDefender float64
	KeeperConeDefenders   int
	AttackersBehindBall   int
	DefendersBehindBall   int
	DefendedArea          float64
}

// Timing holds elapsed match time. ElapsedMs is the raw period clock, ElapsedTime
// the monotonic whole-match clock in seconds.
type Timing struct {
	ElapsedMs   Opt[int64]
	ElapsedTime Opt[float64]
}

// PossessionTimes are the per-row possession span features, in seconds.
type PossessionTimes struct {
	StartOfPossession   Opt[float64]
	TimeInPossession    Opt[float64]
	TimeToPossessionEnd Opt[float64]
}

// DiagnosticKind classifies a per-shot problem.
type DiagnosticKind string

const (
	DiagMalformedShot      DiagnosticKind = "malformed_shot"
	DiagDegenerateGeometry DiagnosticKind = "degenerate_geometry"
	DiagPanic              DiagnosticKind = "panic"
)

// Diagnostic is attached to a record instead of failing the batch.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
}

func (d Diagnostic) String() string { return string(d.Kind) + ": " + d.Message }

// Record is an event plus every derived column. Raw event fields are never modified
// by the pipeline.
type Record struct {
	Event

	Locations   Locations
	Goalkeeper  Goalkeeper
	Angles      ShotAngles
	Geometry    Opt[ShotGeometry]
	Timing      Timing
	PossTimes   PossessionTimes
	Diagnostics []Diagnostic
}

// ---- Stored / reported rows ----

// ShotFeatures is the flat per-shot row persisted and exported.
type ShotFeatures struct {
	EventID    uuid.UUID    `json:"event_id"`
	MatchID    int          `json:"match_id"`
	Index      int          `json:"index"`
	Period     int          `json:"period"`
	Minute     int          `json:"minute"`
	Second     int          `json:"second"`
	Possession int          `json:"possession"`
	Team       string       `json:"team"`
	Player     string       `json:"player"`
	Outcome    string       `json:"outcome"`
	XG         Opt[float64] `json:"xg"`

	X             Opt[float64] `json:"x"`
	Y             Opt[float64] `json:"y"`
	EndX          Opt[float64] `json:"end_x"`
	EndY          Opt[float64] `json:"end_y"`
	EndZ          Opt[float64] `json:"end_z"`
	KeeperID      Opt[int]     `json:"keeper_id"`
	KeeperName    Opt[string]  `json:"keeper_name"`
	KeeperX       Opt[float64] `json:"keeper_x"`
	KeeperY       Opt[float64] `json:"keeper_y"`
	ShooterX      Opt[float64] `json:"shooter_x"`
	ShooterY      Opt[float64] `json:"shooter_y"`
	KeeperCorrX   Opt[float64] `json:"keeper_corr_x"`
	KeeperCorrY   Opt[float64] `json:"keeper_corr_y"`
	DistToGoal    Opt[float64] `json:"dist_to_goal"`
	AngleToGoal   Opt[float64] `json:"angle_to_goal"`
	DistToKeeper  Opt[float64] `json:"dist_to_keeper"`
	AngleToKeeper Opt[float64] `json:"angle_to_keeper"`
	AngleDev      Opt[float64] `json:"angle_deviation"`
	AvgVelocity   Opt[float64] `json:"avg_shot_velocity"`
	DistToKeeperS Opt[float64] `json:"dist_shooter_to_keeper"`

	Density               Opt[float64] `json:"density"`
	DensityInCone         Opt[float64] `json:"density_in_cone"`
	DefendersInCone       Opt[int]     `json:"defenders_in_cone"`
	NearestDefender       Opt[float64] `json:"nearest_defender"`
	SecondNearestDefender Opt[float64] `json:"second_nearest_defender"`
	KeeperConeDefenders   Opt[int]     `json:"keeper_cone_defenders"`
	AttackersBehindBall   Opt[int]     `json:"attackers_behind_ball"`
	DefendersBehindBall   Opt[int]     `json:"defenders_behind_ball"`
	DefendedArea          Opt[float64] `json:"defended_area"`

	ElapsedTime         Opt[float64] `json:"elapsed_time"`
	StartOfPossession   Opt[float64] `json:"start_of_possession"`
	TimeInPossession    Opt[float64] `json:"time_in_possession"`
	TimeToPossessionEnd Opt[float64] `json:"time_to_possession_end"`

	Diagnostic string `json:"diagnostic"`
}

// ShotFeatures flattens a shot record. The second result is false for non-shots.
func (r *Record) ShotFeatures() (ShotFeatures, bool) {
	if !r.IsShot() {
		return ShotFeatures{}, false
	}
	f := ShotFeatures{
		EventID:    r.ID,
		MatchID:    r.MatchID,
		Index:      r.Index,
		Period:     r.Period,
		Minute:     r.Minute,
		Second:     r.Second,
		Possession: r.Possession,
		Team:       r.Team.Name,
		Player:     r.Player.Name,
		Outcome:    r.Shot.Outcome,
		XG:         r.Shot.XG,

		X:    r.Locations.Location.X,
		Y:    r.Locations.Location.Y,
		EndX: r.Locations.ShotEnd.X,
		EndY: r.Locations.ShotEnd.Y,
		EndZ: r.Locations.ShotEnd.Z,

		KeeperID:   r.Goalkeeper.PlayerID,
		KeeperName: r.Goalkeeper.Name,
		KeeperX:    r.Goalkeeper.X,
		KeeperY:    r.Goalkeeper.Y,

		ShooterX:      r.Angles.ShooterX,
		ShooterY:      r.Angles.ShooterY,
		KeeperCorrX:   r.Angles.KeeperX,
		KeeperCorrY:   r.Angles.KeeperY,
		DistToGoal:    r.Angles.DistToGoal,
		AngleToGoal:   r.Angles.AngleToGoal,
		DistToKeeper:  r.Angles.DistToKeeper,
		AngleToKeeper: r.Angles.AngleToKeeper,
		AngleDev:      r.Angles.AngleDeviation,
		AvgVelocity:   r.Angles.AvgShotVelocity,
		DistToKeeperS: r.Angles.DistShooterToKeeper,

		ElapsedTime:         r.Timing.ElapsedTime,
		StartOfPossession:   r.PossTimes.StartOfPossession,
		TimeInPossession:    r.PossTimes.TimeInPossession,
		TimeToPossessionEnd: r.PossTimes.TimeToPossessionEnd,
	}
	if g, ok := r.Geometry.Get(); ok {
		f.Density = Some(g.Density)
		f.DensityInCone = Some(g.DensityInCone)
		f.DefendersInCone = Some(g.DefendersInCone)
		f.NearestDefender = Some(g.NearestDefender)
		f.SecondNearestDefender = Some(g.SecondNearestDefender)
		f.KeeperConeDefenders = Some(g.KeeperConeDefenders)
		f.AttackersBehindBall = Some(g.AttackersBehindBall)
		f.DefendersBehindBall = Some(g.DefendersBehindBall)
		f.DefendedArea = Some(g.DefendedArea)
	}
	if len(r.Diagnostics) > 0 {
		f.Diagnostic = r.Diagnostics[0].String()
	}
	return f, true
}

// MatchSummary is a lightweight record for list/show commands.
type MatchSummary struct {
	MatchID   int
	Source    string
	Events    int
	Shots     int
	Failed    int
	DerivedAt time.Time
}
