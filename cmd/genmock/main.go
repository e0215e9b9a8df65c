// Command genmock writes a deterministic synthetic flight dataset shaped like
// the training data. The output format follows the file extension (.csv or
// .xlsx).
//
// Usage:
//
//	go run ./cmd/genmock -out data/flight_data_2021.csv -rows 5000 -seed 42
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/mockdata"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path (.csv or .xlsx)")
	rows := flag.Int("rows", 5000, "number of flight records")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *rows < 1 {
		return fmt.Errorf("-rows must be positive, got %d", *rows)
	}

	records := mockdata.Flights(*rows, *seed)
	if err := write(*out, records); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote %d records to %s", *rows, *out)

	printStats(records)
	return nil
}

func write(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		err = mockdata.WriteXLSX(f, records)
	case ".csv":
		err = mockdata.WriteCSV(f, records)
	default:
		return fmt.Errorf("unsupported extension %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	return f.Close()
}

func printStats(records [][]string) {
	header := records[0]
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}

	cancelled := 0
	airlines := map[string]int{}
	for _, rec := range records[1:] {
		if rec[idx["Cancelled"]] == "True" {
			cancelled++
		}
		airlines[rec[idx["Airline"]]]++
	}

	names := make([]string, 0, len(airlines))
	for a := range airlines {
		names = append(names, a)
	}
	sort.Strings(names)

	fmt.Printf("\nrecords: %d (cancelled %d)\n", len(records)-1, cancelled)
	for _, a := range names {
		fmt.Printf("  %-45s %d\n", a, airlines[a])
	}
}
