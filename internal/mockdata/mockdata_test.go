package mockdata

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/domain"
)

func TestFlights(t *testing.T) {
	records := Flights(200, 1)

	require.Len(t, records, 201)
	for i, rec := range records {
		assert.Len(t, rec, len(Header()), "row %d", i)
	}
	assert.Equal(t, records, Flights(200, 1), "same seed, same table")
	assert.NotEqual(t, records, Flights(200, 2))

	airlines := map[string]bool{}
	for _, rec := range records[1:] {
		airlines[rec[3]] = true
	}
	assert.Len(t, airlines, len(config.Airlines))
}

func TestFlights_FeedTheFeatureGenerator(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Flights(100, 3)))

	raw, err := domain.ReadFlights(&buf)
	require.NoError(t, err)
	features, vocab, err := domain.GenerateFeatures(raw)
	require.NoError(t, err)

	assert.LessOrEqual(t, features.Nrow(), 100)
	assert.Greater(t, features.Nrow(), 80)
	assert.Len(t, vocab.Categories[domain.ColAirline], len(config.Airlines))
	for _, f := range config.NumericFeatures {
		assert.True(t, domain.HasColumn(features, f.Name), f.Name)
	}
}

func TestWriteXLSX(t *testing.T) {
	records := Flights(30, 4)
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, records))

	df, err := domain.ReadFlightsXLSX(&buf, Sheet)
	require.NoError(t, err)
	assert.Equal(t, 30, df.Nrow())
	assert.Equal(t, Header(), df.Names())
}
