package outliers

// FeatureTotals are the running sufficient statistics for one feature:
// enough to derive mean and variance in O(1).
type FeatureTotals struct {
	Sum   float64 `json:"sum"`
	SumSq float64 `json:"sum_sq"`
	Count int     `json:"count"`
}

// Accumulator maps feature name to its running totals. It is stored as a
// JSON column on PlayerSeasonState and mutated read-modify-write, never
// in place through the ORM.
type Accumulator map[string]FeatureTotals

// Add folds one observation into the named feature's totals.
func (a Accumulator) Add(name string, v float64) {
	t := a[name]
	t.Sum += v
	t.SumSq += v * v
	t.Count++
	a[name] = t
}

// SampleCount returns how many observations the feature has accumulated.
func (a Accumulator) SampleCount(name string) int {
	return a[name].Count
}

// Mean returns the feature's running mean; ok is false below one sample.
func (a Accumulator) Mean(name string) (float64, bool) {
	t := a[name]
	if t.Count == 0 {
		return 0, false
	}
	return t.Sum / float64(t.Count), true
}

// Variance returns the population variance from the running totals. It can
// come out slightly negative from float rounding; callers floor it anyway.
func (a Accumulator) Variance(name string) float64 {
	t := a[name]
	if t.Count == 0 {
		return 0
	}
	mean := t.Sum / float64(t.Count)
	return t.SumSq/float64(t.Count) - mean*mean
}

// Clone returns a deep copy, so scoring can never alias persisted state.
func (a Accumulator) Clone() Accumulator {
	out := make(Accumulator, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
