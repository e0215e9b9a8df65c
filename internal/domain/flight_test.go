package domain

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadFlightsXLSX(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{ColCancelled, ColDepTimeBlk, ColAirline, ColDeptType, ColArrType, "tempF"},
		{"False", "0600-0659", testDelta, "large_airport", "medium_airport", 40},
		{"True", "0700-0759", testEnvoy, "small_airport", "large_airport"},
	})

	df, err := ReadFlightsXLSX(buf, "")
	require.NoError(t, err)

	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, series.Bool, df.Col(ColCancelled).Type())
	assert.True(t, df.Col("tempF").Elem(1).IsNA(), "trailing empty cell is padded as missing")

	out, _, err := GenerateFeatures(df)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Nrow())
}

func TestReadFlightsXLSX_Errors(t *testing.T) {
	t.Run("header only", func(t *testing.T) {
		buf := buildWorkbook(t, [][]any{{ColCancelled, ColAirline}})
		_, err := ReadFlightsXLSX(buf, "")
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("unknown sheet", func(t *testing.T) {
		buf := buildWorkbook(t, [][]any{{ColCancelled}, {"False"}})
		_, err := ReadFlightsXLSX(buf, "Flights")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Flights")
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := ReadFlightsXLSX(strings.NewReader("Cancelled\nFalse\n"), "")
		require.Error(t, err)
	})
}

func TestLoadFlights_DispatchesOnExtension(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		df, err := LoadFlights("flight_data_2021.csv", strings.NewReader(flightsCSV))
		require.NoError(t, err)
		assert.Equal(t, 4, df.Nrow())
	})

	t.Run("xlsx", func(t *testing.T) {
		buf := buildWorkbook(t, [][]any{{ColCancelled, ColAirline}, {"False", testDelta}})
		df, err := LoadFlights("flights.XLSX", buf)
		require.NoError(t, err)
		assert.Equal(t, 1, df.Nrow())
	})
}

func TestColumnAndMatrix(t *testing.T) {
	df := dataframe.LoadRecords([][]string{
		{"a", "b", "name"},
		{"1", "2.5", "x"},
		{"3", "4", "y"},
	})
	require.NoError(t, df.Err)

	t.Run("matrix in column order", func(t *testing.T) {
		m, err := Matrix(df, []string{"b", "a"})
		require.NoError(t, err)
		r, c := m.Dims()
		assert.Equal(t, 2, r)
		assert.Equal(t, 2, c)
		assert.Equal(t, []float64{2.5, 1}, m.RawRowView(0))
		assert.Equal(t, []float64{4, 3}, m.RawRowView(1))
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := Matrix(df, []string{"a", "c"})
		var mc *MissingColumnError
		require.True(t, errors.As(err, &mc))
		assert.Equal(t, "c", mc.Column)
	})

	t.Run("non numeric column", func(t *testing.T) {
		_, err := Column(df, "name")
		var pe *ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "name", pe.Column)
		assert.Equal(t, 0, pe.Row)
	})

	t.Run("no columns", func(t *testing.T) {
		_, err := Matrix(df, nil)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})
}
