// Package extract recovers structured invoice fields (vendor, date, amount)
// from linearized document text using ordered fallback pattern matching.
//
// Each field has an ordered rule list of (pattern, parse, validate) triples.
// Rules are tried in order against the whole text; the first rule whose
// first occurrence parses and validates wins. An invalid match moves on to
// the next rule, not to the next occurrence of the same pattern, which
// keeps a stray page number or a zero total from shadowing a later, more
// specific pattern. Extraction never fails: total ambiguity degrades to a
// zero amount, today's date, and a vendor derived from the filename, so a
// reviewable candidate always comes out.
package extract

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ebilling/internal/core"
)

// now is swapped out in tests to pin the date default.
var now = time.Now

type rule[T any] struct {
	pattern  *regexp.Regexp
	parse    func(match []string) (T, error)
	validate func(value T) bool
}

// Amount rules: labeled totals first, then the first bare currency-prefixed
// number anywhere. Grouping commas are stripped before parsing.
var amountRules = []rule[core.Money]{
	{pattern: regexp.MustCompile(`(?i)total[:\s]*\$?([\d,]+\.?\d*)`), parse: parseAmount, validate: positiveAmount},
	{pattern: regexp.MustCompile(`(?i)amount[:\s]*\$?([\d,]+\.?\d*)`), parse: parseAmount, validate: positiveAmount},
	{pattern: regexp.MustCompile(`(?i)due[:\s]*\$?([\d,]+\.?\d*)`), parse: parseAmount, validate: positiveAmount},
	{pattern: regexp.MustCompile(`(?i)balance[:\s]*\$?([\d,]+\.?\d*)`), parse: parseAmount, validate: positiveAmount},
	{pattern: regexp.MustCompile(`\$\s*([\d,]+\.?\d*)`), parse: parseAmount, validate: positiveAmount},
}

// Date rules: a labeled date, then any slash/dash numeric date, then a
// month-name date. Matches that fail to parse as a real calendar date are
// skipped.
var dateRules = []rule[core.Date]{
	{pattern: regexp.MustCompile(`(?i)date[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`), parse: parseNumericDate, validate: validDate},
	{pattern: regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`), parse: parseNumericDate, validate: validDate},
	{pattern: regexp.MustCompile(`(?i)(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+(\d{1,2}),?\s+(\d{4})`), parse: parseMonthNameDate, validate: validDate},
}

// Vendor rules: a "from:" label wins over a bare name ending in a legal
// entity suffix. When both match the same text, only the first in order is
// used. The second pattern is deliberately case sensitive so lowercase prose
// containing "inc" does not turn into a vendor.
var vendorRules = []rule[string]{
	{pattern: regexp.MustCompile(`(?i)from[:\s]*([A-Za-z\s&]+(?:LLP|LLC|Inc|Corp)?)`), parse: parseVendor, validate: vendorLongEnough},
	{pattern: regexp.MustCompile(`([A-Za-z\s&]+(?:LLP|LLC|Inc|Corp|Law))`), parse: parseVendor, validate: vendorLongEnough},
}

// Extract converts raw document text and a filename hint into a candidate
// invoice. It is a pure function of its inputs apart from the date default,
// which falls back to the extraction date when no date is recoverable. The
// candidate carries no id; the ledger assigns one at admission.
func Extract(text, filenameHint string) core.Invoice {
	return core.Invoice{
		Vendor:     extractVendor(text, filenameHint),
		Date:       extractDate(text),
		Amount:     extractAmount(text),
		Provenance: core.TruncateProvenance(text),
	}
}

func extractAmount(text string) core.Money {
	if amount, ok := firstMatch(amountRules, text); ok {
		return amount
	}
	return core.Money{}
}

func extractDate(text string) core.Date {
	if date, ok := firstMatch(dateRules, text); ok {
		return date
	}
	return core.DateOf(now())
}

func extractVendor(text, filenameHint string) string {
	if vendor, ok := firstMatch(vendorRules, text); ok {
		return vendor
	}
	return vendorFromFilename(filenameHint)
}

func firstMatch[T any](rules []rule[T], text string) (T, bool) {
	for _, r := range rules {
		match := r.pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		value, err := r.parse(match)
		if err != nil || !r.validate(value) {
			continue
		}
		return value, true
	}
	var zero T
	return zero, false
}

func parseAmount(match []string) (core.Money, error) {
	return core.ParseMoney(match[1])
}

func positiveAmount(m core.Money) bool {
	return m.Cents > 0
}

// parseNumericDate handles slash/dash dates in month/day/year order.
// Two-digit years below 50 land in 20xx, the rest in 19xx.
func parseNumericDate(match []string) (core.Date, error) {
	parts := strings.FieldsFunc(match[1], func(r rune) bool {
		return r == '/' || r == '-'
	})
	if len(parts) != 3 {
		return core.Date{}, errInvalidDate
	}
	month, err1 := strconv.Atoi(parts[0])
	day, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return core.Date{}, errInvalidDate
	}
	if year < 100 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}
	return calendarDate(year, month, day)
}

func parseMonthNameDate(match []string) (core.Date, error) {
	month, ok := monthsByPrefix[strings.ToLower(match[1])]
	if !ok {
		return core.Date{}, errInvalidDate
	}
	day, err1 := strconv.Atoi(match[2])
	year, err2 := strconv.Atoi(match[3])
	if err1 != nil || err2 != nil {
		return core.Date{}, errInvalidDate
	}
	return calendarDate(year, int(month), day)
}

// calendarDate rejects values that time.Date would silently normalize,
// e.g. 2/30 rolling over into March.
func calendarDate(year, month, day int) (core.Date, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return core.Date{}, errInvalidDate
	}
	d := core.NewDate(year, month, day)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return core.Date{}, errInvalidDate
	}
	return d, nil
}

func validDate(d core.Date) bool {
	return !d.IsZero()
}

func parseVendor(match []string) (string, error) {
	vendor := strings.TrimSpace(match[1])
	runes := []rune(vendor)
	if len(runes) > 50 {
		vendor = string(runes[:50])
	}
	return vendor, nil
}

func vendorLongEnough(vendor string) bool {
	return len(vendor) > 2
}

// vendorFromFilename is the vendor of last resort: the filename with any
// ".pdf" suffix removed and separators replaced with spaces.
func vendorFromFilename(name string) string {
	name = strings.TrimSuffix(name, ".pdf")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var errInvalidDate = errors.New("invalid calendar date")
