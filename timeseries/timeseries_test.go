package timeseries

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	for _, f := range Fields() {
		parsed, err := ParseField(f.String())
		require.Nil(t, err)
		assert.Equal(t, f, parsed)
	}

	_, err := ParseField("unknown")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestPointValueWith(t *testing.T) {
	p := MissingPoint()
	for i, f := range Fields() {
		assert.True(t, math.IsNaN(p.Value(f)), f.String())
		p = p.With(f, float64(i))
	}
	for i, f := range Fields() {
		assert.Equal(t, float64(i), p.Value(f), f.String())
	}
	assert.True(t, math.IsNaN(p.Value(Field(99))))
}

func TestFromColumns(t *testing.T) {
	testData := map[string]struct {
		cols map[Field][]float64
		len  int
		err  error
	}{
		"empty": {
			cols: nil,
			len:  0,
		},
		"valid": {
			cols: map[Field][]float64{
				FieldRain:  {1, 2, 3},
				FieldDrain: {4, 5, 6},
			},
			len: 3,
		},
		"length mismatch": {
			cols: map[Field][]float64{
				FieldRain:  {1, 2, 3},
				FieldDrain: {4, 5},
			},
			err: ErrDatasetLenMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			s, err := FromColumns(td.cols)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.len, s.Len())
			for f, col := range td.cols {
				assert.Equal(t, col, s.Column(f))
			}
		})
	}
}

func TestCopyAndSlice(t *testing.T) {
	s, err := FromColumns(map[Field][]float64{FieldRain: {1, 2, 3, 4}})
	require.Nil(t, err)

	c := s.Copy()
	c[0].Rain = 10
	assert.Equal(t, 1.0, s[0].Rain)

	sub := s.Slice(1, 3)
	assert.Equal(t, []float64{2, 3}, sub.Column(FieldRain))
	sub[0].Rain = 20
	assert.Equal(t, 2.0, s[1].Rain)

	assert.Equal(t, 0, s.Slice(3, 1).Len())
	assert.Equal(t, 4, s.Slice(-1, 10).Len())
}

func TestClamp(t *testing.T) {
	testData := map[string]struct {
		start, end, n    int
		expStart, expEnd int
	}{
		"in range":       {1, 3, 5, 1, 3},
		"end past":       {1, 9, 5, 1, 5},
		"negative":       {-2, -1, 5, 0, 0},
		"start past end": {4, 2, 5, 2, 2},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			start, end := Clamp(td.start, td.end, td.n)
			assert.Equal(t, td.expStart, start)
			assert.Equal(t, td.expEnd, end)
		})
	}
}

func TestReadCSV(t *testing.T) {
	in := `rainMm,minsTotal,absorbDeltaMmTotal,runoffDrainMmHr,notes
0.5,0,1.2,3.4,a
,1,null,2.5,b
`
	s, err := ReadCSV(strings.NewReader(in))
	require.Nil(t, err)
	require.Equal(t, 2, s.Len())

	assert.Equal(t, 0.5, s[0].Rain)
	assert.Equal(t, 3.4, s[0].Drain)
	assert.True(t, math.IsNaN(s[0].Runoff))
	assert.True(t, math.IsNaN(s[1].Rain))
	assert.True(t, math.IsNaN(s[1].Absorb))
	assert.Equal(t, 2.5, s[1].Drain)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = ReadCSV(strings.NewReader("rainMm\nabc\n"))
	assert.NotNil(t, err)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	s := GenerateStorm(GenerateConst(5, 0.1), 2, 0.5, 1.2)
	s[2].Runoff = math.NaN()

	var buf bytes.Buffer
	require.Nil(t, WriteCSV(&buf, s))

	out, err := ReadCSV(&buf)
	require.Nil(t, err)
	require.Equal(t, s.Len(), out.Len())
	for _, f := range Fields() {
		assert.InDeltaSlice(t, dropNaN(s.Column(f)), dropNaN(out.Column(f)), 1e-12, f.String())
	}
	assert.True(t, math.IsNaN(out[2].Runoff))
}

func dropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func TestValues(t *testing.T) {
	v := GenerateConst(5, 1).Add(GenerateConst(5, 2)).SetRange(0, 3, 10)
	assert.Equal(t, Values{3, 3, 3, 0, 0}, v)
}

func TestGenerateStorm(t *testing.T) {
	rain := GenerateConst(10, 0).SetRange(0.5, 2, 5)
	s := GenerateStorm(rain, 4, 0.6, 1.5)
	require.Equal(t, 10, s.Len())

	assert.Equal(t, 4.0, s[0].Absorb)
	assert.InDelta(t, 0.6*math.Pow(4, 1.5), s[0].Drain, 1e-12)
	for i := 1; i < s.Len(); i++ {
		expected := s[i-1].Absorb + rain[i] - s[i-1].Drain/60
		assert.InDelta(t, expected, s[i].Absorb, 1e-12)
		assert.InDelta(t, s[i-1].DrainTotal+s[i-1].Drain/60, s[i].DrainTotal, 1e-12)
		assert.InDelta(t, 0.6*math.Pow(s[i].Absorb, 1.5), s[i].Drain, 1e-12)
	}
}
