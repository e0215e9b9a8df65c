package domain

import (
	"errors"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVocabulary() Vocabulary {
	return Vocabulary{
		Version: VocabularyVersion,
		Categories: map[string][]string{
			ColAirline:  {testDelta, testEnvoy},
			ColDeptType: {"large_airport", "small_airport"},
			ColArrType:  {"medium_airport"},
		},
	}
}

func TestIndicatorName(t *testing.T) {
	assert.Equal(t, testDelta, IndicatorName(ColAirline, testDelta))
	assert.Equal(t, "dept-type_ohe_large_airport", IndicatorName(ColDeptType, "large_airport"))
	assert.Equal(t, "arr-type_ohe_small_airport", IndicatorName(ColArrType, "small_airport"))
}

func TestDeriveVocabulary_SkipsMissingCells(t *testing.T) {
	df := dataframe.LoadRecords([][]string{
		{ColAirline, ColDeptType, ColArrType},
		{"B", "x", "y"},
		{"A", "", "y"},
		{"B", "x", "NaN"},
	}, loadOptions()...)
	require.NoError(t, df.Err)

	v, err := DeriveVocabulary(df)
	require.NoError(t, err)

	assert.Equal(t, VocabularyVersion, v.Version)
	assert.Equal(t, []string{"A", "B"}, v.Categories[ColAirline])
	assert.Equal(t, []string{"x"}, v.Categories[ColDeptType])
	assert.Equal(t, []string{"y"}, v.Categories[ColArrType])
	assert.NoError(t, v.Validate())
}

func TestVocabulary_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *Vocabulary)
		want   string
	}{
		{"wrong version", func(v *Vocabulary) { v.Version = 0 }, "version"},
		{"missing column", func(v *Vocabulary) { delete(v.Categories, ColArrType) }, ColArrType},
		{"unsorted", func(v *Vocabulary) { v.Categories[ColAirline] = []string{testEnvoy, testDelta} }, "not sorted"},
		{"duplicate", func(v *Vocabulary) { v.Categories[ColAirline] = []string{testDelta, testDelta} }, "not sorted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := testVocabulary()
			tt.mutate(&v)
			err := v.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, testVocabulary().Validate())
	})
}

func TestVocabulary_Columns(t *testing.T) {
	assert.Equal(t, []string{
		testDelta,
		testEnvoy,
		"dept-type_ohe_large_airport",
		"dept-type_ohe_small_airport",
		"arr-type_ohe_medium_airport",
	}, testVocabulary().Columns())
}

func TestVocabulary_Contains(t *testing.T) {
	v := testVocabulary()
	assert.True(t, v.Contains(ColAirline, testEnvoy))
	assert.False(t, v.Contains(ColAirline, "Frontier Airlines Inc."))
	assert.False(t, v.Contains("Origin", testEnvoy))
}

func TestVocabulary_Encode(t *testing.T) {
	v := testVocabulary()

	t.Run("known value", func(t *testing.T) {
		names, values, err := v.Encode(ColDeptType, "small_airport")
		require.NoError(t, err)
		assert.Equal(t, []string{"dept-type_ohe_large_airport", "dept-type_ohe_small_airport"}, names)
		assert.Equal(t, []float64{0, 1}, values)
	})

	t.Run("unknown value", func(t *testing.T) {
		_, _, err := v.Encode(ColAirline, "Frontier Airlines Inc.")
		var pe *ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, ColAirline, pe.Column)
		assert.Equal(t, -1, pe.Row)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, _, err := v.Encode("Origin", "ATL")
		var mc *MissingColumnError
		require.True(t, errors.As(err, &mc))
		assert.Equal(t, "Origin", mc.Column)
	})
}
