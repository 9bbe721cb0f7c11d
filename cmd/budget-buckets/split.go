package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/awhite/budget-buckets/internal/split"
)

var splitCmd = &cobra.Command{
	Use:   "split <splits-file>",
	Short: "Compute who owes what for a list of shared expenses",
	Args:  cobra.ExactArgs(1),
	RunE:  runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)
}

// splitEntry is one shared expense in the input file.
type splitEntry struct {
	Amount    float64  `yaml:"amount"`
	Payee     string   `yaml:"payee"`
	Category  string   `yaml:"category"`
	Debtors   []string `yaml:"debtors"`
	Creditors []string `yaml:"creditors"`
	Taxes     []struct {
		Rate  float64 `yaml:"rate"`
		Payee string  `yaml:"payee"`
	} `yaml:"taxes"`
	Tips []struct {
		Amount   float64 `yaml:"amount"`
		Category string  `yaml:"category"`
	} `yaml:"tips"`
}

func runSplit(cmd *cobra.Command, args []string) error {
	_, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var entries []splitEntry
	if err := dec.Decode(&entries); err != nil {
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}

	var splitter split.Splitter
	for _, entry := range entries {
		extras := make([]any, 0, len(entry.Taxes)+len(entry.Tips))
		for _, tax := range entry.Taxes {
			extras = append(extras, split.Tax{Rate: tax.Rate, Payee: tax.Payee})
		}
		for _, tip := range entry.Tips {
			extras = append(extras, split.Tip{
				Amount:   decimal.NewFromFloat(tip.Amount).Round(2),
				Category: tip.Category,
			})
		}
		err := splitter.Add(split.Split{
			Amount:    decimal.NewFromFloat(entry.Amount).Round(2),
			Payee:     entry.Payee,
			Category:  entry.Category,
			Debtors:   split.Even(entry.Debtors...),
			Creditors: split.Even(entry.Creditors...),
		}, extras...)
		if err != nil {
			return err
		}
	}

	ledger, err := splitter.Ledger()
	if err != nil {
		return err
	}

	fmt.Print(ledger.String())
	fmt.Println()
	for _, name := range ledger.Names {
		fmt.Printf("%-16s: %12s\n", name, ledger.Totals()[name].StringFixed(2))
	}
	return nil
}
