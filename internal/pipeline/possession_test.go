package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPossession_Spans(t *testing.T) {
	first := passEvent(nil, nil, atTime(1, 0, 10, ""), inPossession(7))
	mid := passEvent(nil, nil, atTime(1, 0, 15, ""), inPossession(7))
	last := shotEvent(nil, nil, atTime(1, 0, 25, ""), inPossession(7))
	other := passEvent(nil, nil, atTime(1, 0, 30, ""), inPossession(8))
	b := runAll(t, mid, last, first, other)

	p := mustLookup(t, b, first.ID).PossTimes
	assert.Equal(t, some(10), p.StartOfPossession)
	assert.Equal(t, some(0), p.TimeInPossession)
	assert.Equal(t, some(15), p.TimeToPossessionEnd)

	p = mustLookup(t, b, mid.ID).PossTimes
	assert.Equal(t, some(10), p.StartOfPossession)
	assert.Equal(t, some(5), p.TimeInPossession)
	assert.Equal(t, some(10), p.TimeToPossessionEnd)

	p = mustLookup(t, b, last.ID).PossTimes
	assert.Equal(t, some(10), p.StartOfPossession)
	assert.Equal(t, some(15), p.TimeInPossession)
	assert.Equal(t, some(0), p.TimeToPossessionEnd)

	p = mustLookup(t, b, other.ID).PossTimes
	assert.Equal(t, some(30), p.StartOfPossession)
	assert.Equal(t, some(0), p.TimeInPossession)
	assert.Equal(t, some(0), p.TimeToPossessionEnd)
}

func TestPossession_KeyedByMatch(t *testing.T) {
	a := passEvent(nil, nil, atTime(1, 1, 0, ""), inPossession(3), inMatch(1))
	bEv := passEvent(nil, nil, atTime(1, 2, 0, ""), inPossession(3), inMatch(2))
	b := runAll(t, a, bEv)

	assert.Equal(t, some(60), mustLookup(t, b, a.ID).PossTimes.StartOfPossession)
	assert.Equal(t, some(120), mustLookup(t, b, bEv.ID).PossTimes.StartOfPossession)
}

func TestPossession_UntimedEventsDoNotStretchSpan(t *testing.T) {
	timed := passEvent(nil, nil, atTime(1, 0, 10, ""), inPossession(2))
	untimed := passEvent(nil, nil, atTime(1, 5, 0, "bad.ts"), inPossession(2))
	b := runAll(t, timed, untimed)

	p := mustLookup(t, b, timed.ID).PossTimes
	assert.Equal(t, some(0), p.TimeToPossessionEnd)
	assert.False(t, mustLookup(t, b, untimed.ID).PossTimes.StartOfPossession.Valid())
}
