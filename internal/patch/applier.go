package patch

import (
	"reflect"
	"sort"
)

// #region applier

// Applier merges card deltas into a target configuration without ever
// destructively overwriting non-trivial existing data: the
// configuration only grows or corrects small fields over time.
type Applier struct {
	config ApplyConfig
}

// NewApplier creates an applier with the given merge parameters.
func NewApplier(config ApplyConfig) *Applier {
	return &Applier{config: config}
}

// Apply merges the card's deltas into cfg and returns the merged
// configuration with the sorted list of keys whose values changed
// (structural equality, not reference). If the card does not apply the
// input is returned unchanged with no changed fields.
//
// Merge rules per delta key:
//   - absent in cfg: set to the delta value
//   - existing string shorter than ShortStringMax, delta also a
//     string: overwrite (tiny-field correction allowance)
//   - anything else (arrays, long strings, non-strings): keep the
//     existing value
func (a *Applier) Apply(cfg Config, card Card) (Config, []string) {
	if !card.Applies {
		return cfg, nil
	}

	merged := make(Config, len(cfg)+len(card.Deltas))
	for k, v := range cfg {
		merged[k] = v
	}

	var changed []string
	for key, value := range card.Deltas {
		existing, present := merged[key]
		if present && !a.overwritable(existing, value) {
			continue
		}
		merged[key] = value
		if !present || !reflect.DeepEqual(existing, value) {
			changed = append(changed, key)
		}
	}

	sort.Strings(changed)
	return merged, changed
}

// overwritable reports whether an existing value may be replaced:
// only short strings replaced by strings qualify.
func (a *Applier) overwritable(existing, incoming any) bool {
	es, ok := existing.(string)
	if !ok || len(es) >= a.config.ShortStringMax {
		return false
	}
	_, ok = incoming.(string)
	return ok
}

// #endregion applier
