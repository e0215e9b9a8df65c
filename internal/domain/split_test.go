package domain

import (
	"errors"
	"math"
	"slices"
	"strconv"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIndices(t *testing.T) {
	train, test, err := SplitIndices(10, 0.2, DefaultSeed)
	require.NoError(t, err)

	t.Run("sizes", func(t *testing.T) {
		assert.Len(t, test, 2)
		assert.Len(t, train, 8)
	})

	t.Run("disjoint and complete", func(t *testing.T) {
		all := append(slices.Clone(train), test...)
		slices.Sort(all)
		want := make([]int, 10)
		for i := range want {
			want[i] = i
		}
		assert.Equal(t, want, all)
	})

	t.Run("deterministic", func(t *testing.T) {
		train2, test2, err := SplitIndices(10, 0.2, DefaultSeed)
		require.NoError(t, err)
		assert.Equal(t, train, train2)
		assert.Equal(t, test, test2)
	})

	t.Run("seed changes the split", func(t *testing.T) {
		_, a, err := SplitIndices(1000, 0.2, 1)
		require.NoError(t, err)
		_, b, err := SplitIndices(1000, 0.2, 2)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestSplitIndices_RoundsTestSize(t *testing.T) {
	tests := []struct {
		n        int
		fraction float64
		wantTest int
	}{
		{5, 0.2, 1},
		{7, 0.25, 2},
		{9, 0.5, 5},
		{100, 0.33, 33},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.n), func(t *testing.T) {
			train, test, err := SplitIndices(tt.n, tt.fraction, DefaultSeed)
			require.NoError(t, err)
			assert.Len(t, test, tt.wantTest)
			assert.Len(t, train, tt.n-tt.wantTest)
		})
	}
}

func TestSplitIndices_Errors(t *testing.T) {
	for _, f := range []float64{0, 1, -0.1, 1.5, math.NaN()} {
		t.Run("fraction "+strconv.FormatFloat(f, 'g', -1, 64), func(t *testing.T) {
			_, _, err := SplitIndices(10, f, DefaultSeed)
			var fe *InvalidFractionError
			require.True(t, errors.As(err, &fe))
		})
	}

	t.Run("empty test side", func(t *testing.T) {
		_, _, err := SplitIndices(2, 0.2, DefaultSeed)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("empty train side", func(t *testing.T) {
		_, _, err := SplitIndices(2, 0.9, DefaultSeed)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("no rows", func(t *testing.T) {
		_, _, err := SplitIndices(0, 0.2, DefaultSeed)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})
}

func TestTrainTest(t *testing.T) {
	ids := make([]int, 20)
	for i := range ids {
		ids[i] = i
	}
	df := dataframe.New(series.New(ids, series.Int, "id"))

	train, test, err := TrainTest(df, 0.25, DefaultSeed)
	require.NoError(t, err)
	assert.Equal(t, 15, train.Nrow())
	assert.Equal(t, 5, test.Nrow())

	trainIDs, err := train.Col("id").Int()
	require.NoError(t, err)
	testIDs, err := test.Col("id").Int()
	require.NoError(t, err)
	for _, id := range testIDs {
		assert.NotContains(t, trainIDs, id)
	}

	_, again, err := TrainTest(df, 0.25, DefaultSeed)
	require.NoError(t, err)
	againIDs, err := again.Col("id").Int()
	require.NoError(t, err)
	assert.Equal(t, testIDs, againIDs)
}
