// Command validate checks the integrity of one pipeline run directory: the
// config snapshot parses, every model bundle decodes and matches the
// configuration, scores parse, metrics recomputed from the scores equal the
// persisted metrics bit for bit, and the saved frames are consistent.
//
// Usage:
//
//	go run ./cmd/validate -run-dir runs/1638345600
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/go-cmp/cmp"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/artifact"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/domain"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/model"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	runDir := flag.String("run-dir", "", "pipeline run directory to validate")
	flag.Parse()

	if *runDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*runDir); code != 0 {
		os.Exit(code)
	}
}

func run(dir string) int {
	fmt.Println("=== Run Artifact Validation ===")
	fmt.Println(dir)

	cfg, err := config.Load(filepath.Join(dir, artifact.ConfigFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	bundles := make(map[model.Family]*model.Bundle, len(model.Families))
	phases := []*phase{
		validateBundles(dir, cfg, bundles),
		validateScores(dir),
		validateVocabulary(dir, bundles),
	}
	if cfg.RunConfig.SaveData {
		phases = append(phases, validateFrames(dir, cfg))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateBundles(dir string, cfg *config.Config, out map[model.Family]*model.Bundle) *phase {
	p := &phase{name: "Model bundles"}
	for _, f := range model.Families {
		b, err := artifact.ReadModel(filepath.Join(dir, artifact.ModelFile(f)))
		if err != nil {
			p.errorf("%s: %v", f, err)
			continue
		}
		out[f] = b
		if b.Family != f {
			p.errorf("%s: file holds a %s bundle", f, b.Family)
		}
		if !slices.Equal(b.Features, cfg.TrainModel.Features) {
			p.errorf("%s: features %v, config has %v", f, b.Features, cfg.TrainModel.Features)
		}
		if b.Response != cfg.TrainModel.Response {
			p.errorf("%s: response %q, config has %q", f, b.Response, cfg.TrainModel.Response)
		}
	}
	return p
}

func validateScores(dir string) *phase {
	p := &phase{name: "Scores and metrics"}
	for _, f := range model.Families {
		pairs, err := artifact.ReadScores(filepath.Join(dir, artifact.ScoresFile(f)))
		if err != nil {
			p.errorf("%s: %v", f, err)
			continue
		}
		recomputed, err := domain.Evaluate(pairs)
		if err != nil {
			p.errorf("%s: evaluate scores: %v", f, err)
			continue
		}
		persisted, err := artifact.ReadMetrics(filepath.Join(dir, artifact.MetricsFile(f)))
		if err != nil {
			p.errorf("%s: %v", f, err)
			continue
		}
		compareMetric(p, f, "mae", persisted.MAE, recomputed.MAE)
		compareMetric(p, f, "rmse", persisted.RMSE, recomputed.RMSE)
		compareMetric(p, f, "r2", persisted.R2, recomputed.R2)
	}
	return p
}

func compareMetric(p *phase, f model.Family, name string, persisted, recomputed float64) {
	if math.Float64bits(persisted) != math.Float64bits(recomputed) {
		p.errorf("%s: %s persisted %v, recomputed %v", f, name, persisted, recomputed)
	}
}

func validateVocabulary(dir string, bundles map[model.Family]*model.Bundle) *phase {
	p := &phase{name: "Vocabulary"}
	vocab, err := artifact.ReadVocabulary(filepath.Join(dir, artifact.VocabularyFile))
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	for _, f := range model.Families {
		b, ok := bundles[f]
		if !ok {
			continue
		}
		if diff := cmp.Diff(vocab, b.Vocabulary); diff != "" {
			p.errorf("%s: bundle vocabulary differs (-run +bundle):\n%s", f, diff)
		}
	}
	return p
}

func validateFrames(dir string, cfg *config.Config) *phase {
	p := &phase{name: "Saved frames"}
	counts := make(map[string]int, 3)
	for _, name := range []string{artifact.DataFile, artifact.TrainFile, artifact.TestFile} {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		df, err := domain.ReadFlights(f)
		f.Close()
		if err != nil {
			p.errorf("%s: %v", name, err)
			continue
		}
		counts[name] = df.Nrow()
		for _, col := range append(slices.Clone(cfg.TrainModel.Features), cfg.TrainModel.Response) {
			if !domain.HasColumn(df, col) {
				p.errorf("%s: missing column %q", name, col)
			}
		}
	}
	if !p.passed() {
		return p
	}

	if counts[artifact.TrainFile]+counts[artifact.TestFile] != counts[artifact.DataFile] {
		p.errorf("train %d + test %d rows != data %d rows",
			counts[artifact.TrainFile], counts[artifact.TestFile], counts[artifact.DataFile])
	}
	for _, f := range model.Families {
		pairs, err := artifact.ReadScores(filepath.Join(dir, artifact.ScoresFile(f)))
		if err != nil {
			continue
		}
		if pairs.Len() != counts[artifact.TestFile] {
			p.errorf("%s: %d scores for %d test rows", f, pairs.Len(), counts[artifact.TestFile])
		}
	}
	return p
}
