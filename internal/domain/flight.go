package domain

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Raw record columns used by the feature transforms.
const (
	ColCancelled  = "Cancelled"
	ColDepTimeBlk = "DepTimeBlk"
	ColAirline    = "Airline"
	ColDeptType   = "dept-type"
	ColArrType    = "arr-type"
	ColDepTime    = "dep_time"
)

// CategoricalColumns are one-hot encoded, in this order.
var CategoricalColumns = []string{ColAirline, ColDeptType, ColArrType}

var requiredColumns = []string{ColCancelled, ColDepTimeBlk, ColAirline, ColDeptType, ColArrType}

func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.NaNValues([]string{"", "NA", "NaN", "<nil>"}),
		dataframe.WithTypes(map[string]series.Type{
			ColCancelled:  series.Bool,
			ColDepTimeBlk: series.String,
			ColAirline:    series.String,
			ColDeptType:   series.String,
			ColArrType:    series.String,
		}),
	}
}

// ReadFlights loads raw flight records from CSV. Cancelled is typed as a
// boolean and the categorical columns as strings; everything else is detected.
// Empty cells are missing values.
func ReadFlights(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r, loadOptions()...)
	if df.Err != nil {
		return df, fmt.Errorf("read flights csv: %w", df.Err)
	}
	return df, nil
}

// ReadFlightsXLSX loads raw flight records from a workbook. The first row of
// the sheet is the header; an empty sheet name selects the first sheet.
func ReadFlightsXLSX(r io.Reader, sheet string) (dataframe.DataFrame, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return dataframe.DataFrame{}, fmt.Errorf("open xlsx: %w", ErrEmptyInput)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return dataframe.DataFrame{}, fmt.Errorf("read sheet %q: %w", sheet, ErrEmptyInput)
	}

	// GetRows trims trailing empty cells, so pad every row to the header width.
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		} else if len(row) > width {
			rows[i] = row[:width]
		}
	}

	df := dataframe.LoadRecords(rows, loadOptions()...)
	if df.Err != nil {
		return df, fmt.Errorf("read sheet %q: %w", sheet, df.Err)
	}
	return df, nil
}

// LoadFlights picks the reader by the extension of name.
func LoadFlights(name string, r io.Reader) (dataframe.DataFrame, error) {
	if strings.EqualFold(path.Ext(name), ".xlsx") {
		return ReadFlightsXLSX(r, "")
	}
	return ReadFlights(r)
}

// HasColumn reports whether df has a column called name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func requireColumns(df dataframe.DataFrame, names ...string) error {
	for _, name := range names {
		if !HasColumn(df, name) {
			return &MissingColumnError{Column: name}
		}
	}
	return nil
}
