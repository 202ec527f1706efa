package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "homebudget/internal/log"
	ports "homebudget/internal/sheets"
)

// Client exports ledger years to one spreadsheet. Each year gets its own
// pair of sheets, created on first export.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	movementsBase string
	summaryBase   string
}

var _ ports.YearExporter = (*Client)(nil)

// Options selects the spreadsheet and the service account credentials.
// CredentialsJSON wins over CredentialsFile; with neither,
// GOOGLE_APPLICATION_CREDENTIALS is used.
type Options struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
}

func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		movementsBase: ports.MovementsSheet,
		summaryBase:   ports.SummarySheet,
	}, nil
}

// credentials resolves the service account key to use.
func credentials(opts Options) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(opts.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(opts.CredentialsFile)

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	credentialsJSON, err := credentials(opts)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		applog.FieldComponent, applog.ComponentSheets,
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportYear implements ports.YearExporter. Both sheets are rewritten in
// parallel after making sure they exist.
func (c *Client) ExportYear(ctx context.Context, r ports.YearReport) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	movements := ports.SheetName(c.movementsBase, r.Year)
	summary := ports.SheetName(c.summaryBase, r.Year)

	if err := c.ensureSheets(ctx, movements, summary); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.replaceValues(gctx, movements, ports.MovementRows(r))
	})
	g.Go(func() error {
		return c.replaceValues(gctx, summary, ports.SummaryRows(r))
	})
	if err := g.Wait(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Year exported to Google Sheets",
		applog.FieldComponent, applog.ComponentSheets,
		applog.FieldOperation, applog.OpExport,
		applog.FieldYear, r.Year,
		applog.FieldRevision, r.Revision,
		applog.FieldCount, len(r.Transactions))
	return nil
}

// ensureSheets adds the named sheets the spreadsheet does not have yet.
func (c *Client) ensureSheets(ctx context.Context, names ...string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}

	existing := map[string]bool{}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}

	reqs := missingSheetRequests(existing, names)
	if len(reqs) == 0 {
		return nil
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheets: %w", err)
	}
	return nil
}

func missingSheetRequests(existing map[string]bool, names []string) []*gsheet.Request {
	var reqs []*gsheet.Request
	for _, name := range names {
		if existing[name] {
			continue
		}
		existing[name] = true
		reqs = append(reqs, &gsheet.Request{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: name},
			},
		})
	}
	return reqs
}

// replaceValues clears a sheet and writes rows from A1.
func (c *Client) replaceValues(ctx context.Context, sheet string, rows [][]any) error {
	ref := quoteSheet(sheet)

	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, ref, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}

	vr := &gsheet.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, ref+"!A1", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", sheet, err)
	}
	return nil
}

// quoteSheet quotes a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
