package config

import "time"

// NumericFeatures are the continuous inputs shared by training data and the
// prediction form, in display order.
var NumericFeatures = []NumericField{
	{Name: "dept-elevation_ft", Default: 107},
	{Name: "arr-elevation_ft", Default: 607},
	{Name: "Route_Popularity", Default: 2526},
	{Name: "Distance_Final", Default: 754},
	{Name: "Wind_Speed_mph", Default: 9},
	{Name: "Wind_Gust_mph", Default: 14},
	{Name: "Visibility_miles", Default: 3},
	{Name: "tempF", Default: 46},
	{Name: "precip_in", Default: 0},
	{Name: "daily_snow_in", Default: 0},
	{Name: "dep_time", Default: 9},
}

// DateFeatures are derived from the calendar date selected in the form.
var DateFeatures = []string{"Quarter", "Month", "DayOfWeek"}

// Airlines is the carrier list offered by the prediction form.
var Airlines = []string{
	"Air Wisconsin Airlines Corp",
	"Alaska Airlines Inc.",
	"Allegiant Air",
	"American Airlines Inc.",
	"Capital Cargo International",
	"Comair Inc.",
	"Commutair Aka Champlain Enterprises, Inc.",
	"Delta Air Lines Inc.",
	"Endeavor Air Inc.",
	"Envoy Air",
	"Frontier Airlines Inc.",
	"GoJet Airlines, LLC d/b/a United Express",
	"Horizon Air",
	"JetBlue Airways",
	"Mesa Airlines Inc.",
	"Republic Airlines",
	"SkyWest Airlines Inc.",
	"Southwest Airlines Co.",
	"Spirit Air Lines",
	"United Air Lines Inc.",
}

// AirportTypes maps the form's airport-size names to training categories.
var AirportTypes = []AirportType{
	{Display: "Closed", Value: "closed"},
	{Display: "Large Airport", Value: "large_airport"},
	{Display: "Medium Airport", Value: "medium_airport"},
	{Display: "Small Airport", Value: "small_airport"},
}

// Default returns a configuration with every optional field populated.
// Features and response have no default and must come from the document.
func Default() *Config {
	numOrder := make([]string, 0, len(NumericFeatures)+len(DateFeatures))
	for _, f := range NumericFeatures {
		numOrder = append(numOrder, f.Name)
	}
	numOrder = append(numOrder, DateFeatures...)

	return &Config{
		RunConfig: RunConfig{
			Output:    "runs",
			LogLevel:  "info",
			LogFormat: "json",
		},
		AWS: AWS{
			Region:  "us-east-2",
			DataKey: "flight_data_2021.csv",
			Prefix:  "model-artifacts",
			PCRKey:  "model-artifacts/pcr_model_object.gob",
			RFKey:   "model-artifacts/rf_model_object.gob",
			GBKey:   "model-artifacts/gbm_model_object.gob",
		},
		Storage: Storage{Backend: "s3"},
		TrainModel: TrainModel{
			TestSize:    0.2,
			RandomState: 42,
		},
		ColumnOrder: ColumnOrder{NumFeatures: numOrder},
		Predict: Predict{
			Numeric:      append([]NumericField(nil), NumericFeatures...),
			Airlines:     append([]string(nil), Airlines...),
			AirportTypes: append([]AirportType(nil), AirportTypes...),
			DefaultDate:  "2021-01-01",
		},
		Metrics: Metrics{Job: "flight_delay_pipeline"},
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
	}
}
