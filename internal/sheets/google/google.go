// Package google mirrors ledger snapshots to a Google Sheets workbook.
// The mirror is one-way and advisory: the snapshot store stays the source
// of truth, the sheet is a shareable view for people without the app.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"ebilling/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional: GOOGLE_SHEET_NAME (default "Ledger") and service account
// credentials via GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Ledger"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// WriteSnapshot rewrites the mirror sheet with the given ledger state:
// a summary block followed by one row per record, grouped by collection.
func (c *Client) WriteSnapshot(ctx context.Context, state core.LedgerState) error {
	rows := snapshotRows(state)

	clearRange := fmt.Sprintf("%s!A:F", c.sheetName)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear mirror sheet: %w", err)
	}

	writeRange := fmt.Sprintf("%s!A1", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{
		Values: rows,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write mirror sheet: %w", err)
	}

	return nil
}

func snapshotRows(state core.LedgerState) [][]interface{} {
	totals := totalsOf(state)

	rows := [][]interface{}{
		{"Annual Budget", state.AnnualBudget.String()},
		{"Total Paid", totals.paid.String()},
		{"Total Approved", totals.approved.String()},
		{"Total Accruals", totals.accruals.String()},
		{"Total Committed", totals.committed.String()},
		{"Remaining", state.AnnualBudget.Sub(totals.committed).String()},
		{},
		{"Collection", "Vendor", "Date", "Amount", "ID", "Description"},
	}

	appendInvoices := func(name string, list []core.Invoice) {
		for _, inv := range list {
			rows = append(rows, []interface{}{name, inv.Vendor, inv.Date.ISO(), inv.Amount.String(), inv.ID, ""})
		}
	}
	appendInvoices("pending", state.Pending)
	appendInvoices("approved", state.Approved)
	appendInvoices("paid", state.Paid)
	appendInvoices("rejected", state.Rejected)

	for _, a := range state.Accruals {
		rows = append(rows, []interface{}{"accrual", a.Vendor, a.CreatedAt.Format("2006-01-02"), a.Amount.String(), a.ID, a.Description})
	}

	return rows
}

type snapshotTotals struct {
	paid, approved, accruals, committed core.Money
}

func totalsOf(state core.LedgerState) snapshotTotals {
	var t snapshotTotals
	for _, inv := range state.Paid {
		t.paid = t.paid.Add(inv.Amount)
	}
	for _, inv := range state.Approved {
		t.approved = t.approved.Add(inv.Amount)
	}
	for _, a := range state.Accruals {
		t.accruals = t.accruals.Add(a.Amount)
	}
	t.committed = t.paid.Add(t.approved).Add(t.accruals)
	return t
}
