package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpt_Basics(t *testing.T) {
	var zero Opt[int]
	assert.False(t, zero.Valid())
	assert.Equal(t, 7, zero.Or(7))
	assert.Equal(t, "", zero.String())

	v, ok := Some(3).Get()
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, "3", Some(3).String())
	assert.Equal(t, "1.5", Some(1.5).String())
}

func TestOpt_Combinators(t *testing.T) {
	double := func(x float64) float64 { return 2 * x }
	assert.Equal(t, Some(4.0), Map(Some(2.0), double))
	assert.False(t, Map(None[float64](), double).Valid())

	add := func(a, b float64) float64 { return a + b }
	assert.Equal(t, Some(5.0), Map2(Some(2.0), Some(3.0), add))
	assert.False(t, Map2(Some(2.0), None[float64](), add).Valid())

	positive := func(x float64) Opt[float64] {
		if x <= 0 {
			return None[float64]()
		}
		return Some(x)
	}
	assert.Equal(t, Some(1.0), Bind(Some(1.0), positive))
	assert.False(t, Bind(Some(-1.0), positive).Valid())
	assert.False(t, Bind(None[float64](), positive).Valid())
}

func TestFinite(t *testing.T) {
	assert.Equal(t, Some(1.0), Finite(Some(1.0)))
	assert.False(t, Finite(Some(math.NaN())).Valid())
	assert.False(t, Finite(Some(math.Inf(-1))).Valid())
	assert.False(t, Finite(None[float64]()).Valid())
}

func TestOpt_JSON(t *testing.T) {
	type row struct {
		A Opt[float64] `json:"a"`
		B Opt[string]  `json:"b"`
	}
	b, err := json.Marshal(row{A: Some(2.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 2.5, "b": null}`, string(b))

	var r row
	require.NoError(t, json.Unmarshal([]byte(`{"a": null, "b": "Keeper"}`), &r))
	assert.False(t, r.A.Valid())
	assert.Equal(t, Some("Keeper"), r.B)
}

func TestOpt_SQL(t *testing.T) {
	v, err := None[int]().Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = Some(42).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	var f Opt[float64]
	require.NoError(t, f.Scan(1.25))
	assert.Equal(t, Some(1.25), f)
	require.NoError(t, f.Scan(nil))
	assert.False(t, f.Valid())

	var s Opt[string]
	require.NoError(t, s.Scan([]byte("Marc-André ter Stegen")))
	assert.Equal(t, Some("Marc-André ter Stegen"), s)

	var n Opt[int]
	require.NoError(t, n.Scan(int64(20055)))
	assert.Equal(t, Some(20055), n)
}
