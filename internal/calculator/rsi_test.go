package calculator

import (
	"math"
	"testing"

	"RSISentinel/internal/model"
)

func assertClose(t *testing.T, label string, got model.RSIValue, want, tol float64) {
	t.Helper()
	v, ok := got.Value()
	if !ok {
		t.Fatalf("%s: got undefined, want %.6f", label, want)
	}
	if math.Abs(v-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.6f)", label, v, want, tol)
	}
}

func ramp(start, step float64, n int) model.PriceSeries {
	out := make(model.PriceSeries, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestComputeRSI_InsufficientData(t *testing.T) {
	for _, seeding := range []Seeding{SeedRecursive, SeedSMA} {
		for n := 0; n <= DefaultPeriod; n++ {
			got := ComputeRSIWith(ramp(100, 1, n), DefaultPeriod, seeding)
			if got.Defined() {
				t.Errorf("%s: len=%d: expected undefined, got %s", seeding, n, got)
			}
		}
	}
}

func TestComputeRSI_InvalidPeriod(t *testing.T) {
	if got := ComputeRSI(ramp(100, 1, 30), 0); got.Defined() {
		t.Errorf("period 0: expected undefined, got %s", got)
	}
	if got := ComputeRSI(ramp(100, 1, 30), -3); got.Defined() {
		t.Errorf("negative period: expected undefined, got %s", got)
	}
}

func TestComputeRSI_MonotonicIncrease(t *testing.T) {
	for _, seeding := range []Seeding{SeedRecursive, SeedSMA} {
		got := ComputeRSIWith(ramp(100, 0.5, 40), DefaultPeriod, seeding)
		assertClose(t, seeding.String(), got, 100, 1e-9)
	}
}

func TestComputeRSI_MonotonicDecrease(t *testing.T) {
	for _, seeding := range []Seeding{SeedRecursive, SeedSMA} {
		got := ComputeRSIWith(ramp(100, -0.5, 40), DefaultPeriod, seeding)
		assertClose(t, seeding.String(), got, 0, 1e-9)
	}
}

func TestComputeRSI_UptrendWithPullbacksConvergesHigh(t *testing.T) {
	// Two steps up, one smaller step down: losses never vanish but stay small.
	prices := model.PriceSeries{100}
	for i := 0; i < 60; i++ {
		last := prices[len(prices)-1]
		if i%3 == 2 {
			prices = append(prices, last-0.2)
		} else {
			prices = append(prices, last+1)
		}
	}
	v, ok := ComputeRSI(prices, DefaultPeriod).Value()
	if !ok || v < 85 || v >= 100 {
		t.Errorf("expected RSI in [85, 100), got %.4f (defined=%v)", v, ok)
	}
}

func TestRSISeries_ConstantPricesReadZero(t *testing.T) {
	prices := make(model.PriceSeries, 30)
	for i := range prices {
		prices[i] = 42
	}
	for _, seeding := range []Seeding{SeedRecursive, SeedSMA} {
		series := RSISeries(prices, DefaultPeriod, seeding)
		if len(series) != len(prices) {
			t.Fatalf("%s: expected %d values, got %d", seeding, len(prices), len(series))
		}
		for i := DefaultPeriod; i < len(series); i++ {
			assertClose(t, seeding.String(), series[i], 0, 0)
		}
	}
}

func TestRSISeries_SMASeedUndefinedBeforePeriod(t *testing.T) {
	series := RSISeries(ramp(10, 1, 20), 5, SeedSMA)
	for i := 0; i < 5; i++ {
		if series[i].Defined() {
			t.Errorf("index %d: expected undefined, got %s", i, series[i])
		}
	}
	for i := 5; i < len(series); i++ {
		if !series[i].Defined() {
			t.Errorf("index %d: expected defined value", i)
		}
	}
}

func TestRSISeries_RecursiveDefinedFromFirstDelta(t *testing.T) {
	series := RSISeries(ramp(10, 1, 20), 5, SeedRecursive)
	if series[0].Defined() {
		t.Errorf("index 0: expected undefined, got %s", series[0])
	}
	for i := 1; i < len(series); i++ {
		if !series[i].Defined() {
			t.Errorf("index %d: expected defined value", i)
		}
	}
}

func TestComputeRSI_SMASeed_WilderReference(t *testing.T) {
	// Reference series from Wilder's worked example (period 14).
	prices := model.PriceSeries{
		44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08,
		45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22, 45.64,
	}
	series := RSISeries(prices, 14, SeedSMA)
	want := []float64{70.464135, 66.249619, 66.480942, 69.346853, 66.294713, 57.915021}
	for i, w := range want {
		assertClose(t, "wilder", series[14+i], w, 1e-5)
	}

	got := ComputeRSI(prices, 14)
	assertClose(t, "recursive", got, 54.179295, 1e-5)
}

func TestRSISeries_RecursiveHandComputed(t *testing.T) {
	// period 3, decay 2/3:
	//   d=+1: gain=1, loss=0           -> 100
	//   d=-1: gain=2/3, loss=1         -> 40
	//   d=+2: gain=22/9, loss=2/3      -> 78.571429
	//   d=-1: gain=44/27, loss=39/27   -> 53.012048
	series := RSISeries(model.PriceSeries{10, 11, 10, 12, 11}, 3, SeedRecursive)
	want := []float64{100, 40, 78.571429, 53.012048}
	for i, w := range want {
		assertClose(t, "recursive", series[i+1], w, 1e-5)
	}
}

func TestComputeRSI_NaNInputIsUndefined(t *testing.T) {
	prices := ramp(100, 1, 20)
	prices[10] = math.NaN()
	if got := ComputeRSI(prices, DefaultPeriod); got.Defined() {
		t.Errorf("expected undefined for NaN input, got %s", got)
	}
}

func TestComputeRSI_FullPrecisionKept(t *testing.T) {
	got := ComputeRSI(model.PriceSeries{10, 11, 10, 12, 11}, 3)
	v, _ := got.Value()
	if v == got.Rounded() {
		t.Errorf("expected full precision value, got %.10f", v)
	}
	if got.Rounded() != 53.01 {
		t.Errorf("expected rounded 53.01, got %.4f", got.Rounded())
	}
}

func TestParseSeeding(t *testing.T) {
	tests := []struct {
		in      string
		want    Seeding
		wantErr bool
	}{
		{"", SeedRecursive, false},
		{"recursive", SeedRecursive, false},
		{"EWM", SeedRecursive, false},
		{"sma", SeedSMA, false},
		{" wilder ", SeedSMA, false},
		{"median", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseSeeding(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSeeding(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseSeeding(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
