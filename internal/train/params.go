package train

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/model"
)

// InvalidHyperparameterError reports a configured hyperparameter that fails
// its type or range rule. It is raised before any estimator is built.
type InvalidHyperparameterError struct {
	Family model.Family
	Name   string
	Value  any
	Reason string
}

func (e *InvalidHyperparameterError) Error() string {
	return fmt.Sprintf("%s hyperparameter %s=%v: %s", e.Family, e.Name, e.Value, e.Reason)
}

// Solvers accepted for PCR. Every one is computed with the same exact
// decomposition; the names are kept for configuration compatibility.
var Solvers = []string{"auto", "full", "covariance_eigh", "arpack", "randomized"}

// Hyperparameters are the validated settings of one family. Fields that do
// not apply to the family are zero.
type Hyperparameters struct {
	// PCR
	NComponents   int
	VarianceRatio float64
	Solver        string

	// RF and GBM; MaxDepth 0 is unbounded.
	NEstimators  int
	MaxDepth     int
	LearningRate float64
	Seed         uint64
	// DerivedSeed is set when random_state is absent or null; the Trainer
	// then seeds from its clock.
	DerivedSeed bool
}

var knownParams = map[model.Family][]string{
	model.FamilyPCR: {"n_components", "solver"},
	model.FamilyRF:  {"n_estimators", "max_depth", "random_state"},
	model.FamilyGBM: {"n_estimators", "max_depth", "learning_rate", "random_state"},
}

// Parse validates params for family and fills in defaults.
func Parse(family model.Family, params config.Params) (Hyperparameters, error) {
	known, ok := knownParams[family]
	if !ok {
		return Hyperparameters{}, fmt.Errorf("unknown model family %q", family)
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !slices.Contains(known, name) {
			return Hyperparameters{}, &InvalidHyperparameterError{Family: family, Name: name, Value: params[name], Reason: "unknown hyperparameter"}
		}
	}

	p := paramReader{family: family, params: params}
	var hp Hyperparameters
	switch family {
	case model.FamilyPCR:
		hp.NComponents, hp.VarianceRatio = p.components()
		hp.Solver = p.solver()
	case model.FamilyRF:
		hp.NEstimators = p.positiveInt("n_estimators", 100, false)
		hp.MaxDepth = p.positiveInt("max_depth", 0, true)
		hp.Seed, hp.DerivedSeed = p.seed()
	case model.FamilyGBM:
		hp.NEstimators = p.positiveInt("n_estimators", 100, false)
		hp.MaxDepth = p.positiveInt("max_depth", 3, false)
		hp.LearningRate = p.positiveFloat("learning_rate", 0.1)
		hp.Seed, hp.DerivedSeed = p.seed()
	}
	if p.err != nil {
		return Hyperparameters{}, p.err
	}
	return hp, nil
}

// paramReader keeps the first error so Parse reads like a list of rules.
type paramReader struct {
	family model.Family
	params config.Params
	err    *InvalidHyperparameterError
}

func (p *paramReader) fail(name string, v any, reason string) {
	if p.err == nil {
		p.err = &InvalidHyperparameterError{Family: p.family, Name: name, Value: v, Reason: reason}
	}
}

// positiveInt reads an integer >= 1. nullable lets an explicit null mean
// "unset", reported as 0.
func (p *paramReader) positiveInt(name string, def int, nullable bool) int {
	v, ok := p.params[name]
	if !ok {
		return def
	}
	if v == nil {
		if nullable {
			return 0
		}
		p.fail(name, v, "must be a positive integer")
		return 0
	}
	n, isInt := asInt(v)
	if !isInt || n < 1 {
		p.fail(name, v, "must be a positive integer")
		return 0
	}
	return int(n)
}

func (p *paramReader) positiveFloat(name string, def float64) float64 {
	v, ok := p.params[name]
	if !ok {
		return def
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	default:
		n, isInt := asInt(v)
		if !isInt {
			p.fail(name, v, "must be a positive number")
			return 0
		}
		f = float64(n)
	}
	if !(f > 0) || math.IsInf(f, 0) {
		p.fail(name, v, "must be a positive number")
		return 0
	}
	return f
}

// seed returns random_state as an unsigned seed. derived reports that it is
// absent or null.
func (p *paramReader) seed() (seed uint64, derived bool) {
	v, ok := p.params["random_state"]
	if !ok || v == nil {
		return 0, true
	}
	n, isInt := asInt(v)
	if !isInt || n < 0 {
		p.fail("random_state", v, "must be a non-negative integer")
		return 0, false
	}
	return uint64(n), false
}

func (p *paramReader) components() (int, float64) {
	v, ok := p.params["n_components"]
	if !ok || v == nil {
		return 0, 0
	}
	if f, isFloat := v.(float64); isFloat {
		if f > 0 && f < 1 {
			return 0, f
		}
		p.fail("n_components", v, "a fraction must be strictly between 0 and 1")
		return 0, 0
	}
	n, isInt := asInt(v)
	if !isInt || n < 1 {
		p.fail("n_components", v, "must be a positive integer, a fraction in (0, 1), or null")
		return 0, 0
	}
	return int(n), 0
}

func (p *paramReader) solver() string {
	v, ok := p.params["solver"]
	if !ok || v == nil {
		return "auto"
	}
	s, isString := v.(string)
	if !isString || !slices.Contains(Solvers, s) {
		p.fail("solver", v, fmt.Sprintf("must be one of %v", Solvers))
		return ""
	}
	return s
}

// asInt accepts Go integer kinds only. YAML floats such as 3.0 and numeric
// strings are not integers.
func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	default:
		return 0, false
	}
}
