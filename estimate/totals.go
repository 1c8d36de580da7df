// estimate/totals.go
package estimate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numberToken extracts numeric substrings from free text: "123",
// "123.45", ".5", optionally signed, embedded anywhere.
var numberToken = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\d*\.?\d+)`)

// hyphenJoin recognizes the text between two tokens of a "label - price"
// pair, e.g. the " - " in "OPC 53 - 60000".
var hyphenJoin = regexp.MustCompile(`^\s*-\s*$`)

var separatorStrip = strings.NewReplacer(",", "", " ", "", "\t", "")

// parseNumber interprets a whole field as one number after stripping
// thousands separators and whitespace. Fields with surrounding text do
// not parse here; they fall back to token extraction.
func parseNumber(s string) (decimal.Decimal, bool) {
	s = separatorStrip.Replace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// extractNumbers sums every numeric token found in a free-text value.
// When two tokens are joined by a bare hyphen the left one is treated as
// part of the label ("OPC 53 - 60000" contributes 60000, not 60053);
// independently listed prices ("Cement - 30000, Sand - 20000") all count.
func extractNumbers(s string) (decimal.Decimal, int) {
	locs := numberToken.FindAllStringIndex(s, -1)
	total := decimal.Zero
	count := 0
	for i, loc := range locs {
		if i+1 < len(locs) && hyphenJoin.MatchString(s[loc[1]:locs[i+1][0]]) {
			continue
		}
		d, err := decimal.NewFromString(s[loc[0]:loc[1]])
		if err != nil {
			continue
		}
		total = total.Add(d)
		count++
	}
	return total, count
}

// SectionTotal distinguishes a blank section from one that sums to zero:
// an untouched section renders as empty string, never as a premature "0".
type SectionTotal struct {
	Amount  decimal.Decimal
	Touched bool
}

func (t SectionTotal) Display() string {
	if !t.Touched && t.Amount.IsZero() {
		return ""
	}
	return t.Amount.String()
}

// Totals aggregates the four fixed sections and the grand total.
type Totals struct {
	Materials SectionTotal
	Labor     SectionTotal
	Utilities SectionTotal
	Misc      SectionTotal
	Grand     decimal.Decimal
}

func (t Totals) section(name string) SectionTotal {
	switch name {
	case "materials":
		return t.Materials
	case "labor":
		return t.Labor
	case "utilities":
		return t.Utilities
	case "misc":
		return t.Misc
	}
	return SectionTotal{}
}

// GrandDisplay is blank until at least one section has numeric input.
func (t Totals) GrandDisplay() string {
	if !t.Materials.Touched && !t.Labor.Touched && !t.Utilities.Touched && !t.Misc.Touched {
		return ""
	}
	return t.Grand.String()
}

// RecalcLineAmount derives amount = qty * rate for the line item rooted
// at base (e.g. structured[materials][cement]). When either side does
// not parse as a number the stored amount is left untouched, so flat-fee
// rows with a manually entered amount survive recalculation.
func RecalcLineAmount(f *Form, base string) {
	qty, qok := parseNumber(f.Get(base + "[qty]"))
	rate, rok := parseNumber(f.Get(base + "[rate]"))
	if !qok || !rok {
		return
	}
	f.setDerived(base+"[amount]", qty.Mul(rate).String())
}

// SumSection totals one section. Populated amount fields win; a section
// with none falls back to scanning every field for numeric tokens, so
// free-text-only items still contribute whatever numbers the user typed.
func SumSection(f *Form, section string) SectionTotal {
	prefix := fmt.Sprintf("structured[%s]", section)

	var amounts []string
	for _, name := range f.Names(prefix) {
		if strings.HasSuffix(name, "[amount]") && strings.TrimSpace(f.Get(name)) != "" {
			amounts = append(amounts, name)
		}
	}

	total := decimal.Zero
	touched := false
	if len(amounts) > 0 {
		for _, name := range amounts {
			n, _ := extractNumbers(f.Get(name))
			total = total.Add(n)
		}
		touched = true
	} else {
		for _, name := range f.Names(prefix) {
			n, count := extractNumbers(f.Get(name))
			if count > 0 {
				total = total.Add(n)
				touched = true
			}
		}
	}
	return SectionTotal{Amount: total, Touched: touched}
}

// Recalc recomputes every line amount, the per-section totals and the
// grand total, and writes them back onto the form. Idempotent and
// re-entrant: the change handler calls it on every keystroke.
func Recalc(f *Form) Totals {
	for _, section := range Sections {
		prefix := fmt.Sprintf("structured[%s]", section)
		for _, name := range f.Names(prefix) {
			if strings.HasSuffix(name, "[qty]") {
				RecalcLineAmount(f, strings.TrimSuffix(name, "[qty]"))
			}
		}
	}

	t := Totals{
		Materials: SumSection(f, "materials"),
		Labor:     SumSection(f, "labor"),
		Utilities: SumSection(f, "utilities"),
		Misc:      SumSection(f, "misc"),
	}
	t.Grand = t.Materials.Amount.
		Add(t.Labor.Amount).
		Add(t.Utilities.Amount).
		Add(t.Misc.Amount)

	for _, section := range Sections {
		f.setDerived(fmt.Sprintf("structured[totals][%s]", section), t.section(section).Display())
	}
	grand := t.GrandDisplay()
	f.setDerived("structured[totals][grand]", grand)
	if grand != "" {
		// total_cost mirrors the grand total and stops being
		// independently editable once computed.
		f.setDerived("total_cost", grand)
	}
	return t
}
