package blocking

import (
	"fmt"
	"strings"
)

// Outcome is the result of trying to arm one layer.
type Outcome int

const (
	Armed Outcome = iota
	SkippedUnauthorized
	SkippedByLevel
	Failed
	SkippedOverride
)

func (o Outcome) String() string {
	switch o {
	case Armed:
		return "armed"
	case SkippedUnauthorized:
		return "not authorized"
	case SkippedByLevel:
		return "off at this level"
	case Failed:
		return "failed"
	case SkippedOverride:
		return "lifted by emergency access"
	default:
		return "unknown"
	}
}

// LayerResult reports what happened to a layer during arming.
type LayerResult struct {
	Err     error
	Layer   Kind
	Outcome Outcome
}

func (r LayerResult) String() string {
	if r.Err != nil && r.Outcome == Failed {
		return fmt.Sprintf("%s: %s (%v)", r.Layer, r.Outcome, r.Err)
	}

	return fmt.Sprintf("%s: %s", r.Layer, r.Outcome)
}

// Results holds one result per layer.
type Results []LayerResult

// Get returns the result of a layer.
func (rs Results) Get(k Kind) (LayerResult, bool) {
	for _, r := range rs {
		if r.Layer == k {
			return r, true
		}
	}

	return LayerResult{}, false
}

// Armed returns the layers that are being enforced.
func (rs Results) Armed() []Kind {
	var kinds []Kind

	for _, r := range rs {
		if r.Outcome == Armed {
			kinds = append(kinds, r.Layer)
		}
	}

	return kinds
}

func (rs Results) String() string {
	parts := make([]string, len(rs))

	for i, r := range rs {
		parts[i] = r.String()
	}

	return strings.Join(parts, ", ")
}
