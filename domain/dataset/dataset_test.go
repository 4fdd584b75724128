package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"vizkit/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordKeepsInsertionOrder(t *testing.T) {
	r := NewRecord("b", 1, "a", "x", "c", true)
	r.Set("b", 2)

	assert.Equal(t, []string{"b", "a", "c"}, r.Fields())
	assert.Equal(t, 2.0, r.Value("b"))
	assert.Equal(t, 3, r.Len())

	r.Delete("a")
	assert.Equal(t, []string{"b", "c"}, r.Fields())
	assert.False(t, r.Has("a"))
}

func TestRecordNormalizesNumbers(t *testing.T) {
	r := NewRecord("i", 3, "u", uint8(4), "f", float32(1.5), "n", json.Number("2.25"))

	assert.Equal(t, 3.0, r.Value("i"))
	assert.Equal(t, 4.0, r.Value("u"))
	assert.Equal(t, 1.5, r.Value("f"))
	assert.Equal(t, 2.25, r.Value("n"))
}

func TestNewRecordPanicsOnOddArgs(t *testing.T) {
	assert.Panics(t, func() { NewRecord("a") })
	assert.Panics(t, func() { NewRecord(1, 2) })
}

func TestRecordCloneIsIndependent(t *testing.T) {
	r := NewRecord("a", 1)
	c := r.Clone()
	c.Set("a", 5).Set("b", 2)

	assert.Equal(t, 1.0, r.Value("a"))
	assert.False(t, r.Has("b"))
	assert.True(t, c.Equal(NewRecord("a", 5, "b", 2)))
}

func TestRecordNumber(t *testing.T) {
	r := NewRecord("n", 2, "s", "2", "nan", math.NaN(), "inf", math.Inf(1), "nil", nil)

	v, ok := r.Number("n")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	for _, f := range []string{"s", "nan", "inf", "nil", "missing"} {
		_, ok := r.Number(f)
		assert.False(t, ok, f)
	}
}

func TestCompareOrdering(t *testing.T) {
	now := time.Now()
	ordered := []any{-1, 2.5, "a", "b", false, true, now, nil}
	for i := 0; i < len(ordered)-1; i++ {
		assert.Equal(t, -1, Compare(ordered[i], ordered[i+1]), "%v < %v", ordered[i], ordered[i+1])
		assert.Equal(t, 1, Compare(ordered[i+1], ordered[i]))
	}
	assert.Equal(t, 0, Compare(3, 3.0))
	assert.Equal(t, 0, Compare(nil, nil))
}

func TestRecordJSONRoundTripKeepsOrder(t *testing.T) {
	r := NewRecord("z", 1, "a", "two", "m", nil, "b", true)
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"two","m":null,"b":true}`, string(data))

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, r.Equal(&back))
}

func TestDecodeDataset(t *testing.T) {
	ds, err := DecodeBytes([]byte(`[{"x":1,"y":"a"}, null, {"y":"b","nested":{"k":1}}]`))
	require.NoError(t, err)
	require.Len(t, ds, 3)

	assert.Nil(t, ds[1])
	assert.Equal(t, 1.0, ds[0].Value("x"))
	assert.Equal(t, `{"k":1}`, ds[2].Value("nested"))
	assert.Equal(t, []string{"x", "y", "nested"}, ds.Fields())
}

func TestDecodeRejectsNonArray(t *testing.T) {
	for _, input := range []string{`{"x":1}`, `42`, `"text"`, ``, `null`} {
		_, err := Decode(strings.NewReader(input))
		require.Error(t, err, input)
		assert.True(t, errors.Is(err, core.ErrNotADataset), input)
		assert.True(t, errors.Is(err, core.ErrInvalidInput), input)
	}
}

func TestDecodeRejectsNonObjectEntries(t *testing.T) {
	_, err := DecodeBytes([]byte(`[1, 2]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestDatasetColumnAndNumbers(t *testing.T) {
	ds := Dataset{
		NewRecord("v", 1),
		nil,
		NewRecord("v", "text"),
		NewRecord("v", 3),
	}

	col := ds.Column("v")
	require.Len(t, col, 4)
	assert.Equal(t, 1.0, col[0])
	assert.True(t, math.IsNaN(col[1]))
	assert.True(t, math.IsNaN(col[2]))
	assert.Equal(t, []float64{1, 3}, ds.Numbers("v"))
	assert.Equal(t, []string{"v"}, ds.NumericFields())
}

func TestDatasetCloneDeep(t *testing.T) {
	ds := Dataset{NewRecord("a", 1), nil}
	c := ds.Clone()
	c[0].Set("a", 2)

	assert.Equal(t, 1.0, ds[0].Value("a"))
	assert.Nil(t, c[1])
	assert.Nil(t, Dataset(nil).Clone())
	assert.NotNil(t, Dataset{}.Clone())
}

func TestDatasetEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dataset{NewRecord("a", 1), nil}.Encode(&buf))
	assert.JSONEq(t, `[{"a":1},null]`, buf.String())
}
