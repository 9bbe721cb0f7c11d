package bucket

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestFromValues(t *testing.T) {
	data, err := FromValues([]float64{1, 2, 3, 4, 5}, nil, false)
	if err != nil {
		t.Fatalf("FromValues() error = %v", err)
	}
	if data.Amount != 15 {
		t.Errorf("Amount = %v, want 15", data.Amount)
	}
	if len(data.Labels) != 5 || len(data.Values) != 5 || len(data.Ratios) != 5 {
		t.Errorf("unexpected lengths: labels=%d values=%d ratios=%d",
			len(data.Labels), len(data.Values), len(data.Ratios))
	}
	total := 0.0
	for _, r := range data.Ratios {
		total += r
	}
	if !closeTo(total, 1.0) {
		t.Errorf("ratios sum = %v, want 1.0", total)
	}
}

func TestFromValuesZeroAmount(t *testing.T) {
	data, err := FromValues([]float64{0, 0}, nil, false)
	if err != nil {
		t.Fatalf("FromValues() error = %v", err)
	}
	for i, r := range data.Ratios {
		if r != 0 {
			t.Errorf("Ratios[%d] = %v, want 0", i, r)
		}
	}
}

func TestFromValuesRejectsNegative(t *testing.T) {
	if _, err := FromValues([]float64{1, -1}, nil, false); err == nil {
		t.Fatal("FromValues() expected error for negative values")
	}
	if _, err := FromValues([]float64{1, -1}, nil, true); err != nil {
		t.Fatalf("FromValues(allowNegative) error = %v", err)
	}
}

func TestFromRatios(t *testing.T) {
	data, err := FromRatios([]float64{1, 1, 1, 1}, 1, nil)
	if err != nil {
		t.Fatalf("FromRatios() error = %v", err)
	}
	total := 0.0
	for _, r := range data.Ratios {
		total += r
	}
	if !closeTo(total, 1.0) {
		t.Errorf("ratios sum = %v, want 1.0", total)
	}
	for i, v := range data.Values {
		if !closeTo(v, 0.25) {
			t.Errorf("Values[%d] = %v, want 0.25", i, v)
		}
	}
}

func TestFromRatiosErrors(t *testing.T) {
	tests := []struct {
		name   string
		ratios []float64
		amount float64
	}{
		{name: "negative ratio", ratios: []float64{1, -1}, amount: 1},
		{name: "negative amount", ratios: []float64{1, 1}, amount: -1},
		{name: "zero ratios with positive amount", ratios: []float64{0, 0}, amount: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromRatios(tt.ratios, tt.amount, nil); err == nil {
				t.Errorf("FromRatios(%v, %v) expected error", tt.ratios, tt.amount)
			}
		})
	}
}

func TestNewSystem(t *testing.T) {
	system, err := NewSystem(1, []float64{0, 0}, []float64{0.5, 0.5}, nil)
	if err != nil {
		t.Fatalf("NewSystem() error = %v", err)
	}
	if system.Optimal.Amount != 1 {
		t.Errorf("Optimal.Amount = %v, want 1", system.Optimal.Amount)
	}
	if len(system.Current.Values) != 2 || len(system.Optimal.Values) != 2 {
		t.Error("unexpected bucket count")
	}
}

func TestNewSystemTargetsCombinedTotal(t *testing.T) {
	system, err := NewSystem(1000, []float64{2000, 1000, 1000}, []float64{0.5, 0.25, 0.25}, nil)
	if err != nil {
		t.Fatalf("NewSystem() error = %v", err)
	}
	if system.Optimal.Amount != 5000 {
		t.Errorf("Optimal.Amount = %v, want 5000", system.Optimal.Amount)
	}
	want := []float64{2500, 1250, 1250}
	for i, v := range system.Optimal.Values {
		if !closeTo(v, want[i]) {
			t.Errorf("Optimal.Values[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestNewSystemErrors(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		values []float64
		ratios []float64
	}{
		{name: "negative amount", amount: -1, values: []float64{0, 0}, ratios: []float64{0.5, 0.5}},
		{name: "length mismatch", amount: 1, values: []float64{0}, ratios: []float64{1, 1}},
		{name: "negative current value", amount: 1, values: []float64{-1, 0}, ratios: []float64{0.5, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSystem(tt.amount, tt.values, tt.ratios, nil); err == nil {
				t.Error("NewSystem() expected error")
			}
		})
	}
}
