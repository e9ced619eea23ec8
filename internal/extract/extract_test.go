package extract

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"ebilling/internal/core"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int64
	}{
		{
			name: "labeled total beats earlier bare dollar figure",
			text: "Courier fee $5.00 was prepaid.\nTotal: $1,250.00",
			want: 125000,
		},
		{
			name: "zero total falls through to amount due",
			text: "Total: $0.00\nAmount Due: $340.75",
			want: 34075,
		},
		{
			name: "due label without currency symbol",
			text: "Payment due 420.50 upon receipt",
			want: 42050,
		},
		{
			name: "balance label",
			text: "Balance: $99.10",
			want: 9910,
		},
		{
			name: "bare dollar figure as last resort",
			text: "Please remit $75 to the address below",
			want: 7500,
		},
		{
			name: "grouping commas",
			text: "Total: $12,345.67",
			want: 1234567,
		},
		{
			name: "no amount found",
			text: "no figures in this letter",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Extract(tt.text, "doc.pdf")
			if inv.Amount.Cents != tt.want {
				t.Errorf("amount = %d cents, want %d\ntext: %q", inv.Amount.Cents, tt.want, tt.text)
			}
		})
	}
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want core.Date
	}{
		{
			name: "labeled numeric date",
			text: "Date: 3/14/2024",
			want: core.NewDate(2024, 3, 14),
		},
		{
			name: "bare numeric date with dashes",
			text: "Invoice 12-01-2023 enclosed",
			want: core.NewDate(2023, 12, 1),
		},
		{
			name: "two digit year below fifty is 20xx",
			text: "Shipped 6/30/24",
			want: core.NewDate(2024, 6, 30),
		},
		{
			name: "two digit year of fifty or more is 19xx",
			text: "Original filing 6/30/99",
			want: core.NewDate(1999, 6, 30),
		},
		{
			name: "month name date",
			text: "Services rendered March 14, 2024",
			want: core.NewDate(2024, 3, 14),
		},
		{
			name: "abbreviated month without comma",
			text: "Sep 5 1999",
			want: core.NewDate(1999, 9, 5),
		},
		{
			name: "impossible numeric date falls through to month name",
			text: "Date: 13/45/2024 filed Jan 5, 2021",
			want: core.NewDate(2021, 1, 5),
		},
		{
			name: "calendar rollover rejected",
			text: "2/30/2024 then April 1, 2024",
			want: core.NewDate(2024, 4, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Extract(tt.text, "doc.pdf")
			if !inv.Date.Equal(tt.want.Time) {
				t.Errorf("date = %s, want %s\ntext: %q", inv.Date.ISO(), tt.want.ISO(), tt.text)
			}
		})
	}
}

func TestExtractDateDefaultsToExtractionDay(t *testing.T) {
	fixed := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	defer func() { now = orig }()

	inv := Extract("no date in here", "doc.pdf")
	if want := core.DateOf(fixed); !inv.Date.Equal(want.Time) {
		t.Errorf("date = %s, want extraction day %s", inv.Date.ISO(), want.ISO())
	}
}

func TestExtractVendor(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		filename string
		want     string
	}{
		{
			name: "from label",
			text: "From: Smith & Jones LLP, 100 Main St",
			want: "Smith & Jones LLP",
		},
		{
			name: "bare name with legal entity suffix",
			text: "Acme Legal Services LLC\n123 Main Street",
			want: "Acme Legal Services LLC",
		},
		{
			name:     "lowercase suffix does not match the bare pattern",
			text:     "services were incidental to the matter, 2024",
			filename: "retainer.pdf",
			want:     "retainer",
		},
		{
			name:     "too short from match falls through",
			text:     "From: A, 100 Main St",
			filename: "Acme-Legal_Invoice.pdf",
			want:     "Acme Legal Invoice",
		},
		{
			name:     "filename fallback strips pdf and separators",
			text:     "1099 figures only: 1, 2, 3",
			filename: "Acme-Legal_Invoice.pdf",
			want:     "Acme Legal Invoice",
		},
		{
			name:     "empty filename yields empty vendor",
			text:     "no names at all 123",
			filename: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Extract(tt.text, tt.filename)
			if inv.Vendor != tt.want {
				t.Errorf("vendor = %q, want %q\ntext: %q", inv.Vendor, tt.want, tt.text)
			}
		})
	}
}

func TestExtractVendorTruncated(t *testing.T) {
	long := strings.Repeat("Very Long Name ", 10) // 150 chars, letters and spaces
	inv := Extract("From: "+long+", 2024", "doc.pdf")
	if n := len([]rune(inv.Vendor)); n > 50 {
		t.Errorf("vendor length = %d runes, want at most 50", n)
	}
}

func TestExtractProvenance(t *testing.T) {
	short := "Total: $10.00 from a short letter"
	if inv := Extract(short, ""); inv.Provenance != short {
		t.Errorf("short provenance altered: %q", inv.Provenance)
	}

	long := strings.Repeat("x", core.MaxProvenanceRunes+200)
	inv := Extract(long, "")
	if n := len([]rune(inv.Provenance)); n != core.MaxProvenanceRunes {
		t.Errorf("provenance length = %d runes, want %d", n, core.MaxProvenanceRunes)
	}
	if !strings.HasPrefix(long, inv.Provenance) {
		t.Error("provenance is not a prefix of the source text")
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	text := "From: Smith & Jones LLP, Boston\nDate: 3/14/2024\nTotal: $1,250.00"

	first := Extract(text, "invoice.pdf")
	second := Extract(text, "invoice.pdf")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different candidates:\n%+v\n%+v", first, second)
	}
	if first.ID != "" {
		t.Errorf("candidate carries an id %q; ids are assigned at admission", first.ID)
	}
}

func TestExtractNeverFails(t *testing.T) {
	fixed := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)
	orig := now
	now = func() time.Time { return fixed }
	defer func() { now = orig }()

	inv := Extract("", "")
	if inv.Amount.Cents != 0 {
		t.Errorf("amount = %d, want 0 sentinel", inv.Amount.Cents)
	}
	if !inv.Date.Equal(core.DateOf(fixed).Time) {
		t.Errorf("date = %s, want extraction day", inv.Date.ISO())
	}
	if inv.Vendor != "" || inv.Provenance != "" {
		t.Errorf("empty input produced vendor %q provenance %q", inv.Vendor, inv.Provenance)
	}
}
