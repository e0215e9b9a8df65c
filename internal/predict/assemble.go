package predict

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/domain"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/model"
)

const dateLayout = "2006-01-02"

// Form is one submission of the prediction form. Numeric inputs left out
// take their configured defaults; an empty Date takes the default date.
type Form struct {
	Numeric       map[string]float64 `json:"numeric"`
	Date          string             `json:"date"`
	Airline       string             `json:"airline"`
	DepartureType string             `json:"departure_type"`
	ArrivalType   string             `json:"arrival_type"`
}

// PredictionError reports a form that could not be turned into a prediction.
type PredictionError struct {
	Model string
	Err   error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("predict with %s: %v", e.Model, e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// DateFeatures returns Quarter, Month, and DayOfWeek (Monday = 1) for d.
func DateFeatures(d time.Time) (quarter, month, weekday int) {
	month = int(d.Month())
	quarter = (month-1)/3 + 1
	weekday = int(d.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return quarter, month, weekday
}

// Assemble builds the model input row for form: numeric inputs in
// columnOrder, then the indicator columns of the bundle vocabulary. The
// returned vector follows bundle.Features.
func Assemble(form Form, schema config.Predict, columnOrder []string, bundle *model.Bundle) ([]float64, error) {
	values, err := numericValues(form, schema)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(columnOrder)+len(bundle.Vocabulary.Columns()))
	row := make([]float64, 0, cap(names))
	for _, col := range columnOrder {
		v, ok := values[col]
		if !ok {
			continue
		}
		names = append(names, col)
		row = append(row, v)
	}

	selections, err := categoricalValues(form, schema)
	if err != nil {
		return nil, err
	}
	for _, col := range domain.CategoricalColumns {
		n, v, err := bundle.Vocabulary.Encode(col, selections[col])
		if err != nil {
			return nil, err
		}
		names = append(names, n...)
		row = append(row, v...)
	}

	out := make([]float64, len(bundle.Features))
	for i, f := range bundle.Features {
		j := slices.Index(names, f)
		if j < 0 {
			return nil, fmt.Errorf("model feature %q is not provided by the form", f)
		}
		out[i] = row[j]
	}
	return out, nil
}

func numericValues(form Form, schema config.Predict) (map[string]float64, error) {
	values := make(map[string]float64, len(schema.Numeric)+3)
	for _, f := range schema.Numeric {
		values[f.Name] = f.Default
	}
	for name, v := range form.Numeric {
		if _, ok := values[name]; !ok {
			return nil, fmt.Errorf("unknown numeric input %q", name)
		}
		values[name] = v
	}

	date := form.Date
	if date == "" {
		date = schema.DefaultDate
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
	}
	q, m, wd := DateFeatures(d)
	values["Quarter"] = float64(q)
	values["Month"] = float64(m)
	values["DayOfWeek"] = float64(wd)
	return values, nil
}

func categoricalValues(form Form, schema config.Predict) (map[string]string, error) {
	if !slices.Contains(schema.Airlines, form.Airline) {
		return nil, fmt.Errorf("unknown airline %q", form.Airline)
	}
	dept, err := airportType(schema, form.DepartureType)
	if err != nil {
		return nil, fmt.Errorf("departure type: %w", err)
	}
	arr, err := airportType(schema, form.ArrivalType)
	if err != nil {
		return nil, fmt.Errorf("arrival type: %w", err)
	}
	return map[string]string{
		domain.ColAirline:  form.Airline,
		domain.ColDeptType: dept,
		domain.ColArrType:  arr,
	}, nil
}

func airportType(schema config.Predict, display string) (string, error) {
	for _, at := range schema.AirportTypes {
		if at.Display == display {
			return at.Value, nil
		}
	}
	if display == "" {
		return "", errors.New("no airport type selected")
	}
	return "", fmt.Errorf("unknown airport type %q", display)
}
