package coeff

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// Join types with a default fallback order
const (
	JoinIFromS = "iFromS"
	JoinIFromQ = "iFromQ"
	JoinQFromI = "qFromI"
)

var baseCodes = []string{
	"profileCode10T",
	"profile_code_10_t",
	"profileCode20T",
	"profile_code_20_t",
}

var profileCodes = []string{
	"profileCodeExact",
	"profile_code_exact",
	"profileCodeExactNvg",
	"profile_code_exact_nvg",
	"profileCode5Nvg",
	"profile_code_5_nvg",
	"profileCode10Nvg",
	"profile_code_10_nvg",
	"profileCode20Nvg",
	"profile_code_20_nvg",
}

// Profile maps a profile field name, e.g. profileCodeExact, to the code of a profile
type Profile map[string]string

// Fallbacks lists, per join type, the profile fields to try from best to worst fit
type Fallbacks map[string][]string

// DefaultFallbacks returns a fresh copy of the built in fallback order. iFromQ and qFromI
// try the rounded base codes and iFromS tries the profile codes.
func DefaultFallbacks() Fallbacks {
	return Fallbacks{
		JoinIFromQ: slices.Clone(baseCodes),
		JoinQFromI: slices.Clone(baseCodes),
		JoinIFromS: slices.Clone(profileCodes),
	}
}

// LoadFallbacks reads a YAML mapping of join type to field list. Join types missing from
// the document keep their default order.
func LoadFallbacks(r io.Reader) (Fallbacks, error) {
	var override Fallbacks
	if err := yaml.NewDecoder(r).Decode(&override); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unable to decode fallbacks, %w", err)
	}

	fallbacks := DefaultFallbacks()
	for joinType, fields := range override {
		fallbacks[joinType] = slices.Clone(fields)
	}
	return fallbacks, nil
}

// Match is a resolved coefficient record
type Match struct {
	JoinType string `json:"joinType"`
	Version  string `json:"version"`
	Field    string `json:"field"`
	Code     string `json:"code"`
	Found    string `json:"matchFound"`
	Record   Record `json:"record"`
}

// Predict evaluates the matched curve at x
func (m Match) Predict(x float64) (float64, float64) {
	return x, Evaluate(m.Record.Function(), x)
}

// Resolve finds the coefficients for a profile. Fields are tried in fallback order and,
// for each field present on the profile, versions in the given order. The first hit wins.
// Within a hit the polynomial record is preferred, then exponential, then power, then any
// other record.
func Resolve(joinType string, profile Profile, table Table, versions []string, fallbacks Fallbacks) (Match, bool) {
	if fallbacks == nil {
		fallbacks = DefaultFallbacks()
	}

	for _, field := range fallbacks[joinType] {
		code := profile[field]
		if code == "" {
			continue
		}
		for _, v := range versions {
			functions := table[joinType][v][code]
			rec, ok := pick(functions)
			if !ok {
				continue
			}
			return Match{
				JoinType: joinType,
				Version:  v,
				Field:    field,
				Code:     code,
				Found:    fmt.Sprintf("%s = %s", field, code),
				Record:   rec,
			}, true
		}
	}
	return Match{}, false
}

func pick(functions map[FunctionType]Record) (Record, bool) {
	for _, ft := range []FunctionType{FunctionPoly, FunctionExp, FunctionPower} {
		if rec, exists := functions[ft]; exists {
			return rec, true
		}
	}
	others := slices.Sorted(maps.Keys(functions))
	if len(others) == 0 {
		return Record{}, false
	}
	return functions[others[0]], true
}
