package domain

import (
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// GenerateFeatures drops cancelled flights, derives the vocabulary from the
// remaining rows, and encodes them with it. The returned vocabulary must be
// persisted with any model trained on the frame.
func GenerateFeatures(raw dataframe.DataFrame) (dataframe.DataFrame, Vocabulary, error) {
	if err := requireColumns(raw, requiredColumns...); err != nil {
		return dataframe.DataFrame{}, Vocabulary{}, err
	}

	kept, err := DropCancelled(raw)
	if err != nil {
		return dataframe.DataFrame{}, Vocabulary{}, err
	}

	vocab, err := DeriveVocabulary(kept)
	if err != nil {
		return dataframe.DataFrame{}, Vocabulary{}, err
	}

	out, err := encode(kept, vocab)
	if err != nil {
		return dataframe.DataFrame{}, Vocabulary{}, err
	}
	return out, vocab, nil
}

// EncodeFeatures applies the same transform as GenerateFeatures with a fixed
// vocabulary. A category outside vocab is a ParseError.
func EncodeFeatures(raw dataframe.DataFrame, vocab Vocabulary) (dataframe.DataFrame, error) {
	if err := requireColumns(raw, requiredColumns...); err != nil {
		return dataframe.DataFrame{}, err
	}
	if err := vocab.Validate(); err != nil {
		return dataframe.DataFrame{}, err
	}

	kept, err := DropCancelled(raw)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return encode(kept, vocab)
}

// DropCancelled returns the rows whose Cancelled marker is false.
func DropCancelled(raw dataframe.DataFrame) (dataframe.DataFrame, error) {
	if err := requireColumns(raw, ColCancelled); err != nil {
		return dataframe.DataFrame{}, err
	}

	col := raw.Col(ColCancelled)
	flags := col
	if col.Type() != series.Bool {
		flags = series.New(col.Records(), series.Bool, ColCancelled)
	}

	keep := make([]int, 0, flags.Len())
	for i := 0; i < flags.Len(); i++ {
		e := flags.Elem(i)
		if e.IsNA() {
			return dataframe.DataFrame{}, &ParseError{
				Column: ColCancelled,
				Row:    i,
				Value:  col.Elem(i).String(),
				Reason: "not a boolean",
			}
		}
		cancelled, err := e.Bool()
		if err != nil {
			return dataframe.DataFrame{}, &ParseError{Column: ColCancelled, Row: i, Value: col.Elem(i).String(), Reason: err.Error()}
		}
		if !cancelled {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("every one of %d rows is cancelled: %w", flags.Len(), ErrEmptyInput)
	}

	out := raw.Subset(keep)
	if col.Type() != series.Bool {
		out = out.Mutate(flags.Subset(keep))
	}
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("drop cancelled rows: %w", out.Err)
	}
	return out, nil
}

// ParseDepTime returns the departure hour held in the first two characters
// of a time block such as "0600-0659".
func ParseDepTime(block string) (int, error) {
	if len(block) < 2 {
		return 0, &ParseError{Column: ColDepTimeBlk, Row: -1, Value: block, Reason: "shorter than two characters"}
	}
	h0, h1 := block[0], block[1]
	if h0 < '0' || h0 > '9' || h1 < '0' || h1 > '9' {
		return 0, &ParseError{Column: ColDepTimeBlk, Row: -1, Value: block, Reason: "hour is not numeric"}
	}
	hour := int(h0-'0')*10 + int(h1-'0')
	if hour > 23 {
		return 0, &ParseError{Column: ColDepTimeBlk, Row: -1, Value: block, Reason: "hour out of range"}
	}
	return hour, nil
}

func encode(df dataframe.DataFrame, vocab Vocabulary) (dataframe.DataFrame, error) {
	n := df.Nrow()

	blocks := df.Col(ColDepTimeBlk)
	hours := make([]int, n)
	for i := 0; i < n; i++ {
		h, err := ParseDepTime(blocks.Elem(i).String())
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Row = i
			}
			return dataframe.DataFrame{}, err
		}
		hours[i] = h
	}
	df = df.Mutate(series.New(hours, series.Int, ColDepTime))

	for _, col := range CategoricalColumns {
		cats := vocab.Categories[col]
		index := make(map[string]int, len(cats))
		for j, c := range cats {
			index[c] = j
		}

		indicators := make([][]int, len(cats))
		for j := range indicators {
			indicators[j] = make([]int, n)
		}

		values := df.Col(col)
		for i := 0; i < n; i++ {
			e := values.Elem(i)
			if e.IsNA() {
				continue
			}
			j, ok := index[e.String()]
			if !ok {
				return dataframe.DataFrame{}, &ParseError{Column: col, Row: i, Value: e.String(), Reason: "category not in vocabulary"}
			}
			indicators[j][i] = 1
		}

		for j, c := range cats {
			df = df.Mutate(series.New(indicators[j], series.Int, IndicatorName(col, c)))
		}
	}

	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("encode features: %w", df.Err)
	}
	return df, nil
}
