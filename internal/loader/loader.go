// Package loader reads bucket declarations from YAML, CSV, or XLSX files
// into the rows the tree builder consumes.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/awhite/budget-buckets/pkg/tree"
)

// regexPrefix marks a children token that expands to every other label
// matching the remainder as a regular expression.
const regexPrefix = "regex::"

var validate = validator.New()

// row mirrors one input record before conversion to a tree.Row.
type row struct {
	Label        string    `yaml:"label" validate:"required"`
	CurrentValue float64   `yaml:"current_value" validate:"gte=0"`
	OptimalRatio float64   `yaml:"optimal_ratio" validate:"gte=0"`
	AmountToAdd  float64   `yaml:"amount_to_add" validate:"gte=0"`
	Children     childList `yaml:"children"`
}

// childList accepts either a semicolon-delimited scalar or a YAML sequence.
type childList []string

func (c *childList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*c = tokenize(s)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*c = childList(items)
		return nil
	default:
		return fmt.Errorf("children must be a string or a list, got %v", value.Kind)
	}
}

// Load reads rows from the file at path, dispatching on the extension.
func Load(path string) ([]tree.Row, error) {
	var (
		rows []row
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		rows, err = loadYAML(path)
	case ".csv":
		rows, err = loadCSV(path)
	case ".xlsx":
		rows, err = loadXLSX(path, "")
	default:
		return nil, fmt.Errorf("unknown input extension %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return finish(rows)
}

// LoadSheet reads rows from a specific sheet of an XLSX workbook.
func LoadSheet(path, sheet string) ([]tree.Row, error) {
	rows, err := loadXLSX(path, sheet)
	if err != nil {
		return nil, err
	}
	return finish(rows)
}

func loadYAML(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var rows []row
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return rows, nil
}

func loadCSV(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var rows []row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		parsed, err := fromRecord(header, record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, parsed)
	}
	return rows, nil
}

func loadXLSX(path, sheet string) ([]row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %q of %s is empty", sheet, path)
	}
	var rows []row
	for _, record := range records[1:] {
		parsed, err := fromRecord(records[0], record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, parsed)
	}
	return rows, nil
}

// fromRecord maps one header-indexed record onto a row, rejecting unknown
// columns.
func fromRecord(header, record []string) (row, error) {
	var parsed row
	for i, col := range header {
		cell := ""
		if i < len(record) {
			cell = strings.TrimSpace(record[i])
		}
		switch strings.TrimSpace(col) {
		case "label":
			parsed.Label = cell
		case "current_value":
			if err := parseFloat(cell, &parsed.CurrentValue); err != nil {
				return row{}, fmt.Errorf("column current_value: %w", err)
			}
		case "optimal_ratio":
			if err := parseFloat(cell, &parsed.OptimalRatio); err != nil {
				return row{}, fmt.Errorf("column optimal_ratio: %w", err)
			}
		case "amount_to_add":
			if err := parseFloat(cell, &parsed.AmountToAdd); err != nil {
				return row{}, fmt.Errorf("column amount_to_add: %w", err)
			}
		case "children":
			parsed.Children = tokenize(cell)
		default:
			return row{}, fmt.Errorf("unknown column %q in input", col)
		}
	}
	return parsed, nil
}

func parseFloat(cell string, out *float64) error {
	if cell == "" {
		*out = 0
		return nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return err
	}
	*out = v
	return nil
}

// tokenize turns "A;B;C" into its labels.
func tokenize(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// finish validates the rows, expands regex children tokens, and converts to
// builder rows.
func finish(rows []row) ([]tree.Row, error) {
	labels := make([]string, len(rows))
	for i, r := range rows {
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("invalid row %q: %w", r.Label, err)
		}
		labels[i] = r.Label
	}

	out := make([]tree.Row, len(rows))
	for i, r := range rows {
		children, err := expandChildren(r.Label, r.Children, labels)
		if err != nil {
			return nil, err
		}
		out[i] = tree.Row{
			Label:        r.Label,
			CurrentValue: r.CurrentValue,
			OptimalRatio: r.OptimalRatio,
			AmountToAdd:  r.AmountToAdd,
			Children:     children,
		}
	}
	return out, nil
}

// expandChildren resolves regex:: tokens against every other label. The
// owning row's label is excluded and duplicates are dropped.
func expandChildren(label string, children []string, labels []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(child string) {
		if !seen[child] {
			seen[child] = true
			out = append(out, child)
		}
	}
	for _, token := range children {
		if !strings.HasPrefix(token, regexPrefix) {
			add(token)
			continue
		}
		pattern, err := regexp.Compile("^(?:" + strings.TrimPrefix(token, regexPrefix) + ")")
		if err != nil {
			return nil, fmt.Errorf("row %q: bad children pattern %q: %w", label, token, err)
		}
		for _, candidate := range labels {
			if candidate != label && pattern.MatchString(candidate) {
				add(candidate)
			}
		}
	}
	return out, nil
}
