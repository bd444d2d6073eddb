package features

import "fmt"

// #region resolve

// Resolution is a feature lookup that may have fallen back to a default.
type Resolution struct {
	Value     float64
	Known     bool
	Defaulted bool
	Note      string
}

// Resolve looks up key in fs. Keys with a documented neutral default resolve to
// NeutralDefault when absent, with a note naming what was missing. Other absent
// keys resolve to Known=false and must be treated as unknown by the caller.
func Resolve(fs FeatureSet, key string) Resolution {
	if f, ok := fs.Values[key]; ok {
		return Resolution{Value: f.Value, Known: true}
	}
	if HasNeutralDefault(key) {
		return Resolution{
			Value:     NeutralDefault,
			Known:     true,
			Defaulted: true,
			Note:      fmt.Sprintf("missing %s for %s; neutral default %.1f", key, fs.EntityID, NeutralDefault),
		}
	}
	return Resolution{}
}

// HasNeutralDefault reports whether key falls back to NeutralDefault.
func HasNeutralDefault(key string) bool { return neutralKeys[key] }

// #endregion resolve
