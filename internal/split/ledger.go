package split

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Entry is one ledger row: a split with the amount each debtor owes for it.
type Entry struct {
	Split
	// Owed maps each participant to their rounded share of the amount.
	Owed map[string]decimal.Decimal
	// PennyTo names the debtor who absorbed the rounding penny, if any.
	PennyTo string
	// PennyDelta is the signed penny applied to PennyTo.
	PennyDelta decimal.Decimal
}

// Ledger is the fully computed table of who owes what.
type Ledger struct {
	Names   []string
	Entries []Entry
}

// Ledger computes shares for every split, assigns rounding pennies
// round-robin so no debtor drifts more than a cent ahead of another, and
// validates the result.
func (s *Splitter) Ledger() (*Ledger, error) {
	names := s.Names()

	var entries []Entry
	for _, group := range s.groups {
		for _, sp := range group {
			if !sp.Amount.GreaterThan(broke) {
				continue
			}
			entries = append(entries, Entry{Split: sp, Owed: shares(sp)})
		}
	}

	assignPennies(names, entries)

	ledger := &Ledger{Names: names, Entries: entries}
	if err := ledger.validate(); err != nil {
		return nil, err
	}
	return ledger, nil
}

// shares computes each debtor's weighted share of the amount, rounded to
// pennies.
func shares(sp Split) map[string]decimal.Decimal {
	total := 0
	for _, w := range sp.Debtors {
		total += w
	}
	owed := make(map[string]decimal.Decimal, len(sp.Debtors))
	if total <= 0 {
		return owed
	}
	for name, w := range sp.Debtors {
		weight := decimal.NewFromInt(int64(w)).Div(decimal.NewFromInt(int64(total)))
		owed[name] = sp.Amount.Mul(weight).Round(2)
	}
	return owed
}

// assignPennies fixes rounding drift per debtor set: whenever an entry's
// shares do not add up to its amount, the missing or surplus penny goes to
// the debtor who has absorbed the fewest so far.
func assignPennies(names []string, entries []Entry) {
	byDebtors := make(map[string][]int)
	for i, e := range entries {
		byDebtors[debtorKey(e.Debtors)] = append(byDebtors[debtorKey(e.Debtors)], i)
	}

	keys := make([]string, 0, len(byDebtors))
	for key := range byDebtors {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		count := make(map[string]int)
		for _, i := range byDebtors[key] {
			entry := &entries[i]
			observed := broke
			for _, v := range entry.Owed {
				observed = observed.Add(v)
			}
			delta := entry.Amount.Sub(observed).Round(2)
			if delta.IsZero() {
				continue
			}

			if delta.GreaterThan(broke) {
				delta = penny
			} else {
				delta = penny.Neg()
			}

			payer := ""
			for _, name := range names {
				if _, ok := entry.Debtors[name]; !ok {
					continue
				}
				if payer == "" {
					payer = name
					continue
				}
				if delta.GreaterThan(broke) && count[name] < count[payer] {
					payer = name
				}
				if delta.LessThan(broke) && count[name] > count[payer] {
					payer = name
				}
			}
			if payer == "" {
				continue
			}

			if delta.GreaterThan(broke) {
				count[payer]++
			} else {
				count[payer]--
			}
			entry.PennyTo = payer
			entry.PennyDelta = delta
			entry.Owed[payer] = entry.Owed[payer].Add(delta)
		}
	}
}

func debtorKey(debtors map[string]int) string {
	names := make([]string, 0, len(debtors))
	for name := range debtors {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ";")
}

// validate checks that every entry's shares reconcile with its amount and
// that penny assignment stayed balanced within each debtor set.
func (l *Ledger) validate() error {
	for i, e := range l.Entries {
		observed := broke
		for _, v := range e.Owed {
			observed = observed.Add(v)
		}
		if !e.Amount.Sub(observed).Round(2).IsZero() {
			return fmt.Errorf("ledger entry %d: shares %s do not sum to amount %s", i, observed, e.Amount)
		}
	}

	drift := make(map[string]map[string]decimal.Decimal)
	for _, e := range l.Entries {
		if e.PennyTo == "" {
			continue
		}
		key := debtorKey(e.Debtors)
		if drift[key] == nil {
			drift[key] = make(map[string]decimal.Decimal)
		}
		drift[key][e.PennyTo] = drift[key][e.PennyTo].Add(e.PennyDelta)
	}
	for key, perName := range drift {
		for n1, v1 := range perName {
			for n2, v2 := range perName {
				if v1.Sub(v2).Abs().GreaterThan(penny) {
					return fmt.Errorf("penny drift between %s and %s exceeds one cent for debtors %s", n1, n2, key)
				}
			}
		}
	}
	return nil
}

// Totals sums each participant's owed amounts across the whole ledger.
func (l *Ledger) Totals() map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(l.Names))
	for _, name := range l.Names {
		totals[name] = broke
	}
	for _, e := range l.Entries {
		for name, v := range e.Owed {
			totals[name] = totals[name].Add(v)
		}
	}
	return totals
}

// ByCategory sums each participant's owed amounts grouped by (category,
// payee).
func (l *Ledger) ByCategory() map[string]map[string]decimal.Decimal {
	out := make(map[string]map[string]decimal.Decimal)
	for _, e := range l.Entries {
		key := e.Category + " / " + e.Payee
		if out[key] == nil {
			out[key] = make(map[string]decimal.Decimal)
		}
		for name, v := range e.Owed {
			out[key][name] = out[key][name].Add(v)
		}
	}
	return out
}

// String renders the ledger as a fixed-width table.
func (l *Ledger) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %-12s %-16s %-16s", "group", "amount", "payee", "category")
	for _, name := range l.Names {
		fmt.Fprintf(&b, " %12s", name+".$")
	}
	b.WriteByte('\n')
	for _, e := range l.Entries {
		fmt.Fprintf(&b, "%-5d %-12s %-16s %-16s", e.Group, e.Amount.StringFixed(2), e.Payee, e.Category)
		for _, name := range l.Names {
			owed, ok := e.Owed[name]
			if !ok {
				fmt.Fprintf(&b, " %12s", "-")
				continue
			}
			fmt.Fprintf(&b, " %12s", owed.StringFixed(2))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
