// Package bucket defines the allocation problem over one set of sibling
// buckets and the strategies that solve it.
package bucket

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/awhite/budget-buckets/pkg/money"
)

// Data describes a set of sibling buckets: the value held in each bucket,
// the fraction each value represents of the set, and the total. Data is
// treated as immutable once constructed.
type Data struct {
	// Amount is the total across the bucket set.
	Amount float64
	// Values holds the amount in each bucket.
	Values []float64
	// Ratios holds each bucket's fraction of Amount.
	Ratios []float64
	// Labels names the buckets.
	Labels []string
}

// FromValues builds bucket data from known values; ratios are derived and
// the amount is the sum. Negative values are rejected unless allowNegative
// is set (deltas produced by the unconstrained strategy may be negative).
func FromValues(values []float64, labels []string, allowNegative bool) (Data, error) {
	if !allowNegative {
		for i, v := range values {
			if v < 0 {
				return Data{}, fmt.Errorf("negative value %v at index %d in bucket data", v, i)
			}
		}
	}
	amount := floats.Sum(values)
	ratios := make([]float64, len(values))
	if amount > 0 {
		for i, v := range values {
			ratios[i] = v / amount
		}
	}
	return Data{
		Amount: amount,
		Values: append([]float64(nil), values...),
		Ratios: ratios,
		Labels: defaultLabels(labels, len(values)),
	}, nil
}

// FromRatios builds bucket data from target ratios and a desired total
// amount. Ratios are normalized to sum to one; values are derived.
func FromRatios(ratios []float64, amount float64, labels []string) (Data, error) {
	if amount < 0 {
		return Data{}, fmt.Errorf("negative amount %v in bucket data", amount)
	}
	for i, r := range ratios {
		if r < 0 {
			return Data{}, fmt.Errorf("negative ratio %v at index %d in bucket data", r, i)
		}
	}
	total := floats.Sum(ratios)
	if amount > 0 && total <= 0 {
		return Data{}, fmt.Errorf("all ratios are zero with positive amount %v", amount)
	}
	normed := make([]float64, len(ratios))
	values := make([]float64, len(ratios))
	if total > 0 {
		for i, r := range ratios {
			normed[i] = r / total
			values[i] = amount * normed[i]
		}
	}
	return Data{
		Amount: amount,
		Values: values,
		Ratios: normed,
		Labels: defaultLabels(labels, len(ratios)),
	}, nil
}

func defaultLabels(labels []string, n int) []string {
	if labels != nil {
		return append([]string(nil), labels...)
	}
	labels = make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}
	return labels
}

// System is the full specification of one bucket problem: the current state
// of the sibling set, the amount of new money to distribute across it, and
// the optimal state computed against the target total.
type System struct {
	AmountToAdd float64
	Current     Data
	Optimal     Data
}

// NewSystem builds a system from current values and optimal ratios. The
// optimal data is computed against a target total of the current amount
// plus the amount to add.
func NewSystem(amountToAdd float64, currentValues, optimalRatios []float64, labels []string) (*System, error) {
	if amountToAdd < 0 {
		return nil, fmt.Errorf("amount to add is negative: %v", amountToAdd)
	}
	if len(currentValues) != len(optimalRatios) {
		return nil, fmt.Errorf("length mismatch between values (%d) and ratios (%d)",
			len(currentValues), len(optimalRatios))
	}
	current, err := FromValues(currentValues, labels, false)
	if err != nil {
		return nil, err
	}
	optimal, err := FromRatios(optimalRatios, current.Amount+amountToAdd, labels)
	if err != nil {
		return nil, err
	}
	return &System{AmountToAdd: amountToAdd, Current: current, Optimal: optimal}, nil
}

// String renders the system for diagnostic logging.
func (s *System) String() string {
	var b strings.Builder
	b.WriteString("System\n======\n\n")
	fmt.Fprintf(&b, "                 %s\n", strings.Join(s.Current.Labels, "  "))
	fmt.Fprintf(&b, "amount_to_add  : %s\n", money.Fmt(s.AmountToAdd))
	fmt.Fprintf(&b, "current.values : %s\n", money.Fmt(s.Current.Values...))
	fmt.Fprintf(&b, "current.ratios : %s\n", money.FmtN(money.DefaultWidth, 5, s.Current.Ratios...))
	fmt.Fprintf(&b, "current.amount : %s\n\n", money.Fmt(s.Current.Amount))
	fmt.Fprintf(&b, "optimal.values : %s\n", money.Fmt(s.Optimal.Values...))
	fmt.Fprintf(&b, "optimal.ratios : %s\n", money.FmtN(money.DefaultWidth, 5, s.Optimal.Ratios...))
	fmt.Fprintf(&b, "optimal.amount : %s\n", money.Fmt(s.Optimal.Amount))
	return b.String()
}
