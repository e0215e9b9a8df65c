// Package mockdata generates deterministic synthetic flight records shaped
// like the training data, for fixtures and local runs.
package mockdata

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
)

// Response is the delay column written by Flights.
const Response = "ArrDelayMinutes"

var airportSizes = []string{"large_airport", "medium_airport", "small_airport"}

// Header returns the column names of a Flights table.
func Header() []string {
	h := []string{"FlightDate", "Cancelled", "DepTimeBlk", "Airline", "dept-type", "arr-type"}
	for _, f := range config.NumericFeatures {
		if f.Name == "dep_time" {
			continue
		}
		h = append(h, f.Name)
	}
	h = append(h, config.DateFeatures...)
	return append(h, Response)
}

// Flights returns a header row followed by n records. The same seed always
// produces the same table. About one flight in twenty is cancelled, and every
// airline appears at least once when n >= len(config.Airlines).
func Flights(n int, seed uint64) [][]string {
	rng := rand.New(rand.NewPCG(seed, 0x0f1e2d3c))
	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

	records := make([][]string, 0, n+1)
	records = append(records, Header())
	for i := 0; i < n; i++ {
		date := start.AddDate(0, 0, rng.IntN(365))
		hour := rng.IntN(24)
		airline := config.Airlines[i%len(config.Airlines)]
		dept := airportSizes[rng.IntN(len(airportSizes))]
		arr := airportSizes[rng.IntN(len(airportSizes))]

		elevDep := 10 + rng.Float64()*2000
		elevArr := 10 + rng.Float64()*2000
		popularity := float64(100 + rng.IntN(5000))
		distance := float64(100 + rng.IntN(2500))
		wind := rng.Float64() * 30
		gust := wind + rng.Float64()*15
		visibility := rng.Float64() * 10
		temp := -10 + rng.Float64()*100
		precip := 0.0
		if rng.IntN(4) == 0 {
			precip = rng.Float64() * 2
		}
		snow := 0.0
		if temp < 32 && rng.IntN(3) == 0 {
			snow = rng.Float64() * 6
		}

		delay := 5 + 1.5*wind + 0.8*gust - 2*visibility + 20*precip + 8*snow +
			0.004*distance + 0.9*float64(hour) + rng.NormFloat64()*4
		if delay < 0 {
			delay = 0
		}

		cancelled := "False"
		if rng.IntN(20) == 0 {
			cancelled = "True"
		}

		month := int(date.Month())
		records = append(records, []string{
			date.Format(time.DateOnly),
			cancelled,
			fmt.Sprintf("%02d00-%02d59", hour, hour),
			airline,
			dept,
			arr,
			formatFloat(elevDep),
			formatFloat(elevArr),
			formatFloat(popularity),
			formatFloat(distance),
			formatFloat(wind),
			formatFloat(gust),
			formatFloat(visibility),
			formatFloat(temp),
			formatFloat(precip),
			formatFloat(snow),
			strconv.Itoa((month-1)/3 + 1),
			strconv.Itoa(month),
			strconv.Itoa(isoWeekday(date)),
			formatFloat(delay),
		})
	}
	return records
}

// isoWeekday returns 1 for Monday through 7 for Sunday.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
