package domain

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gota/gota/dataframe"
)

// Defaults for TrainTest when the configuration does not override them.
const (
	DefaultTestFraction = 0.2
	DefaultSeed         = 42
)

// splitStream is the second PCG word; fixed so a seed alone determines the split.
const splitStream = 0x5eed5eed

// SplitIndices returns a reproducible partition of [0, n) into train and test
// row indices. The test side holds round(testFraction*n) rows.
func SplitIndices(n int, testFraction float64, seed int64) (train, test []int, err error) {
	if !(testFraction > 0 && testFraction < 1) {
		return nil, nil, &InvalidFractionError{Fraction: testFraction}
	}
	nTest := int(math.Round(testFraction * float64(n)))
	if nTest == 0 || nTest == n {
		return nil, nil, fmt.Errorf("split %d rows with test fraction %v leaves a side empty: %w", n, testFraction, ErrEmptyInput)
	}

	rng := rand.New(rand.NewPCG(uint64(seed), splitStream))
	perm := rng.Perm(n)
	return perm[nTest:], perm[:nTest], nil
}

// TrainTest partitions df into disjoint train and test frames by uniform
// sampling without replacement. The same seed always yields the same split.
func TrainTest(df dataframe.DataFrame, testFraction float64, seed int64) (train, test dataframe.DataFrame, err error) {
	trainIdx, testIdx, err := SplitIndices(df.Nrow(), testFraction, seed)
	if err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, err
	}

	train = df.Subset(trainIdx)
	if train.Err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, fmt.Errorf("subset train rows: %w", train.Err)
	}
	test = df.Subset(testIdx)
	if test.Err != nil {
		return dataframe.DataFrame{}, dataframe.DataFrame{}, fmt.Errorf("subset test rows: %w", test.Err)
	}
	return train, test, nil
}
