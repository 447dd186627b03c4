// Package statsbomb decodes StatsBomb open-data event files into model events.
package statsbomb

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/pable/go-sb-features/internal/model"
)

// rawEvent mirrors the subset of the open-data event schema the pipeline reads.
type rawEvent struct {
	ID             string             `json:"id"`
	Index          int                `json:"index"`
	Period         int                `json:"period"`
	Timestamp      string             `json:"timestamp"`
	Minute         int                `json:"minute"`
	Second         int                `json:"second"`
	Type           model.Ref          `json:"type"`
	Possession     int                `json:"possession"`
	PossessionTeam model.Ref          `json:"possession_team"`
	Team           model.Ref          `json:"team"`
	Player         model.Ref          `json:"player"`
	Location       []float64          `json:"location"`
	Duration       model.Opt[float64] `json:"duration"`
	Pass           *rawPass           `json:"pass"`
	Shot           *rawShot           `json:"shot"`
}

type rawPass struct {
	EndLocation []float64 `json:"end_location"`
}

type rawShot struct {
	EndLocation []float64          `json:"end_location"`
	XG          model.Opt[float64] `json:"statsbomb_xg"`
	Outcome     model.Ref          `json:"outcome"`
	BodyPart    model.Ref          `json:"body_part"`
	Technique   model.Ref          `json:"technique"`
	FreezeFrame json.RawMessage    `json:"freeze_frame"`
}

type rawFreezeFramePlayer struct {
	Location []float64 `json:"location"`
	Player   model.Ref `json:"player"`
	Position model.Ref `json:"position"`
	Teammate bool      `json:"teammate"`
}

// Decode reads a JSON array of events for one match.
func Decode(r io.Reader, matchID int) ([]model.Event, error) {
	var raws []rawEvent
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	events := make([]model.Event, 0, len(raws))
	for i := range raws {
		e, err := convert(&raws[i], matchID)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func convert(raw *rawEvent, matchID int) (model.Event, error) {
	id, err := uuid.Parse(raw.ID)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: event %d (%q): %v", ErrBadEventID, raw.Index, raw.ID, err)
	}
	e := model.Event{
		ID:             id,
		Index:          raw.Index,
		MatchID:        matchID,
		Period:         raw.Period,
		Minute:         raw.Minute,
		Second:         raw.Second,
		Timestamp:      raw.Timestamp,
		Possession:     raw.Possession,
		PossessionTeam: raw.PossessionTeam,
		Type:           model.EventType(raw.Type.Name),
		Team:           raw.Team,
		Player:         raw.Player,
		Location:       raw.Location,
		Duration:       raw.Duration,
	}
	if raw.Pass != nil {
		e.Pass = &model.Pass{EndLocation: raw.Pass.EndLocation}
	}
	if raw.Shot != nil {
		e.Shot = convertShot(raw.Shot, raw.Duration)
	}
	return e, nil
}

// convertShot decodes the freeze-frame separately so a malformed snapshot only
// affects its own shot.
func convertShot(raw *rawShot, duration model.Opt[float64]) *model.Shot {
	s := &model.Shot{
		EndLocation: raw.EndLocation,
		Duration:    duration,
		XG:          raw.XG,
		Outcome:     raw.Outcome.Name,
		BodyPart:    raw.BodyPart.Name,
		Technique:   raw.Technique.Name,
	}
	if len(raw.FreezeFrame) == 0 || string(raw.FreezeFrame) == "null" {
		return s
	}
	var players []rawFreezeFramePlayer
	if err := json.Unmarshal(raw.FreezeFrame, &players); err != nil {
		s.FreezeFrameErr = err
		return s
	}
	s.FreezeFrame = make([]model.FreezeFramePlayer, len(players))
	for i, p := range players {
		s.FreezeFrame[i] = model.FreezeFramePlayer{
			Location: p.Location,
			Teammate: p.Teammate,
			Position: model.Position(p.Position),
			Player:   p.Player,
		}
	}
	return s
}
