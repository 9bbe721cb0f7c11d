// Package split tracks shared expenses and computes who owes what, down to
// the odd penny.
package split

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	broke = decimal.Zero
	penny = decimal.New(1, -2)
)

// Split is one transaction shared among multiple payers. Debtors and
// Creditors map names to integer weights; a weight of one each splits the
// amount evenly.
type Split struct {
	// Group ties a main split to its derived tax and tip splits.
	Group    int
	Amount   decimal.Decimal
	Rate     float64
	Payee    string
	Category string
	Debtors  map[string]int
	// Creditors records who fronted the money.
	Creditors map[string]int
}

// Tax is a rate-based addition to a split, such as sales tax.
type Tax struct {
	Rate  float64
	Payee string
}

// Tip is an amount-based addition to a split.
type Tip struct {
	Amount   decimal.Decimal
	Category string
}

// Even builds an equal-weight participant map.
func Even(names ...string) map[string]int {
	out := make(map[string]int, len(names))
	for _, name := range names {
		out[name] = 1
	}
	return out
}

// Splitter accumulates groups of splits and derives the ledger.
type Splitter struct {
	groups [][]Split
}

// Add appends a split as a new group, expanding any taxes and tips into
// derived splits of the same group.
func (s *Splitter) Add(sp Split, extras ...any) error {
	if sp.Rate > 0 {
		return fmt.Errorf("can not set the tax or tip rate of a split directly")
	}
	sp.Group = len(s.groups)
	group := []Split{sp}
	derived, err := expand(sp, extras...)
	if err != nil {
		return err
	}
	s.groups = append(s.groups, append(group, derived...))
	return nil
}

// Tax appends rate-based splits to an existing group by index; a negative
// index counts from the most recent group.
func (s *Splitter) Tax(group int, taxes ...Tax) error {
	g, err := s.group(group)
	if err != nil {
		return err
	}
	extras := make([]any, len(taxes))
	for i, t := range taxes {
		extras[i] = t
	}
	derived, err := expand(s.groups[g][0], extras...)
	if err != nil {
		return err
	}
	s.groups[g] = append(s.groups[g], derived...)
	return nil
}

// Tip appends amount-based splits to an existing group by index; a negative
// index counts from the most recent group.
func (s *Splitter) Tip(group int, tips ...Tip) error {
	g, err := s.group(group)
	if err != nil {
		return err
	}
	extras := make([]any, len(tips))
	for i, t := range tips {
		extras[i] = t
	}
	derived, err := expand(s.groups[g][0], extras...)
	if err != nil {
		return err
	}
	s.groups[g] = append(s.groups[g], derived...)
	return nil
}

// Remove drops every group with one of the given group numbers.
func (s *Splitter) Remove(groups ...int) {
	drop := make(map[int]bool, len(groups))
	for _, g := range groups {
		drop[g] = true
	}
	kept := s.groups[:0]
	for _, group := range s.groups {
		if len(group) == 0 || !drop[group[0].Group] {
			kept = append(kept, group)
		}
	}
	s.groups = kept
}

// Names returns every participant across all splits, sorted.
func (s *Splitter) Names() []string {
	seen := make(map[string]bool)
	for _, group := range s.groups {
		for _, sp := range group {
			for name := range sp.Debtors {
				seen[name] = true
			}
			for name := range sp.Creditors {
				seen[name] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Splitter) group(index int) (int, error) {
	if index < 0 {
		index += len(s.groups)
	}
	if index < 0 || index >= len(s.groups) {
		return 0, fmt.Errorf("no split group at index %d", index)
	}
	return index, nil
}

// expand explodes taxes and tips into derived splits of the parent split's
// group.
func expand(sp Split, extras ...any) ([]Split, error) {
	var out []Split
	for _, extra := range extras {
		switch v := extra.(type) {
		case Tax:
			amount := sp.Amount.Mul(decimal.NewFromFloat(v.Rate)).Round(2)
			out = append(out, Split{
				Group:     sp.Group,
				Amount:    amount,
				Rate:      v.Rate,
				Payee:     v.Payee,
				Category:  sp.Category,
				Debtors:   sp.Debtors,
				Creditors: sp.Creditors,
			})
		case Tip:
			rate := 0.0
			if !sp.Amount.IsZero() {
				rate, _ = v.Amount.Div(sp.Amount).Float64()
			}
			category := v.Category
			if category == "" {
				category = sp.Category
			}
			out = append(out, Split{
				Group:     sp.Group,
				Amount:    v.Amount,
				Rate:      rate,
				Payee:     sp.Payee,
				Category:  category,
				Debtors:   sp.Debtors,
				Creditors: sp.Creditors,
			})
		default:
			return nil, fmt.Errorf("unsupported split extra %T", extra)
		}
	}
	return out, nil
}
