package patch

import "github.com/outcrop-ai/pipeline-governor/internal/run"

// #region matcher

// Matches reports whether a run record satisfies every selector
// constraint. An empty selector set always matches (unconstrained
// default). There are no partial-match semantics: one failing
// constraint rejects the record.
func Matches(rec run.Record, selectors []Constraint) bool {
	for _, c := range selectors {
		if !matchOne(rec, c) {
			return false
		}
	}
	return true
}

// #endregion matcher

// #region match-one

func matchOne(rec run.Record, c Constraint) bool {
	val, ok := fieldValue(rec, c.Field)
	if !ok {
		return false
	}

	if c.Equals != nil {
		if !equalValue(val, c.Equals) {
			return false
		}
	}

	if c.Min != nil || c.Max != nil {
		num, isNum := asFloat(val)
		if !isNum {
			return false
		}
		if c.Min != nil && num < *c.Min {
			return false
		}
		if c.Max != nil && num > *c.Max {
			return false
		}
	}

	return true
}

// #endregion match-one

// #region field-resolution

// fieldValue resolves a selector field name against a run record.
// Optional fields resolve only when set; absent fields fail the
// constraint rather than matching vacuously.
func fieldValue(rec run.Record, field string) (any, bool) {
	switch field {
	case "pass":
		return rec.Pass, true
	case "warn":
		return rec.Warn, true
	case "cost":
		return rec.Cost, true
	case "latency_ms":
		return float64(rec.LatencyMs), true
	case "audit_score":
		if rec.AuditScore == nil {
			return nil, false
		}
		return *rec.AuditScore, true
	case "p95":
		if rec.P95 == nil {
			return nil, false
		}
		return *rec.P95, true
	}
	return nil, false
}

func equalValue(val, want any) bool {
	if vb, ok := val.(bool); ok {
		wb, ok := want.(bool)
		return ok && vb == wb
	}
	vn, vok := asFloat(val)
	wn, wok := asFloat(want)
	return vok && wok && vn == wn
}

// asFloat widens the numeric types that reach selectors, including
// the types JSON decoding produces for constraint values.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// #endregion field-resolution
