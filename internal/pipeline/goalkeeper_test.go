package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pable/go-sb-features/internal/model"
)

func TestFindGoalkeeper(t *testing.T) {
	ownKeeper := keeper(2, 40)
	ownKeeper.Teammate = true

	first := keeper(118, 40)
	second := keeper(119, 41)
	second.Player.ID = 999

	gk, ok := findGoalkeeper([]model.FreezeFramePlayer{ownKeeper, opponent(110, 38, posRCB), first, second})
	assert.True(t, ok)
	assert.Equal(t, 20055, gk.Player.ID, "first opposing keeper in frame order wins")

	_, ok = findGoalkeeper([]model.FreezeFramePlayer{ownKeeper, opponent(110, 38, posRCB)})
	assert.False(t, ok, "a teammate keeper is not the opposing keeper")

	_, ok = findGoalkeeper(nil)
	assert.False(t, ok)
}

func TestFindGoalkeeper_ByIDOrName(t *testing.T) {
	byID := opponent(117, 40, model.Position{ID: 1})
	_, ok := findGoalkeeper([]model.FreezeFramePlayer{byID})
	assert.True(t, ok)

	byName := opponent(117, 40, model.Position{Name: "Goalkeeper"})
	_, ok = findGoalkeeper([]model.FreezeFramePlayer{byName})
	assert.True(t, ok)
}

func TestGoalkeeperColumns(t *testing.T) {
	withKeeper := shotEvent([]float64{104, 36}, []model.FreezeFramePlayer{opponent(110, 38, posRCB), keeper(118, 40)})
	noKeeper := shotEvent([]float64{104, 36}, []model.FreezeFramePlayer{opponent(110, 38, posRCB)})
	noFrame := shotEvent([]float64{119, 39}, nil)
	pass := passEvent([]float64{50, 50}, []float64{60, 60})

	b := runAll(t, withKeeper, noKeeper, noFrame, pass)

	gk := mustLookup(t, b, withKeeper.ID).Goalkeeper
	assert.Equal(t, model.Some(20055), gk.PlayerID)
	assert.Equal(t, model.Some("Keeper"), gk.Name)
	assert.Equal(t, some(118), gk.X)
	assert.Equal(t, some(40), gk.Y)

	assert.Equal(t, model.Goalkeeper{}, mustLookup(t, b, noKeeper.ID).Goalkeeper)
	assert.Equal(t, model.Goalkeeper{}, mustLookup(t, b, noFrame.ID).Goalkeeper)
	assert.Equal(t, model.Goalkeeper{}, mustLookup(t, b, pass.ID).Goalkeeper)
}
