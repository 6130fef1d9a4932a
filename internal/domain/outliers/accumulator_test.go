package outliers

import (
	"math"
	"testing"
)

func TestAccumulatorRunningStats(t *testing.T) {
	acc := Accumulator{}
	for _, v := range []float64{10, 12, 14, 16, 18} {
		acc.Add("pts", v)
	}

	if n := acc.SampleCount("pts"); n != 5 {
		t.Fatalf("count = %d, want 5", n)
	}
	mean, ok := acc.Mean("pts")
	if !ok || mean != 14 {
		t.Fatalf("mean = %v, ok=%v", mean, ok)
	}
	// Population variance of {10,12,14,16,18} is 8.
	if v := acc.Variance("pts"); math.Abs(v-8) > 1e-9 {
		t.Fatalf("variance = %v, want 8", v)
	}
}

func TestAccumulatorMissingFeature(t *testing.T) {
	acc := Accumulator{}
	if _, ok := acc.Mean("reb"); ok {
		t.Fatal("mean of an empty feature should not be ok")
	}
	if n := acc.SampleCount("reb"); n != 0 {
		t.Fatalf("count = %d", n)
	}
}

func TestAccumulatorCloneDoesNotAlias(t *testing.T) {
	acc := Accumulator{}
	acc.Add("ast", 5)
	clone := acc.Clone()
	clone.Add("ast", 100)
	if acc.SampleCount("ast") != 1 {
		t.Fatal("mutating the clone leaked into the original")
	}
}

func TestHistoricalThreshold(t *testing.T) {
	cases := []struct {
		record int
		want   int
	}{
		{0, 2},
		{2, 2},
		{3, 2},
		{10, 7},
		{15, 10},
		{29, 20},
	}
	for _, tc := range cases {
		if got := HistoricalThreshold(tc.record); got != tc.want {
			t.Fatalf("HistoricalThreshold(%d) = %d, want %d", tc.record, got, tc.want)
		}
	}
}
