// Package sheetstore implements the append-only tabular store on top of the
// Google Sheets API. Rows are never updated or deleted; the only mutation
// besides appends is header self-healing on setup.
package sheetstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/tphakala/reviewharvest-go/internal/conf"
	"github.com/tphakala/reviewharvest-go/internal/errors"
	"github.com/tphakala/reviewharvest-go/internal/logging"
	"github.com/tphakala/reviewharvest-go/internal/review"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// RequiredHeader is the fixed column layout of the store. Existing sheets
// missing a column get it appended at the next free position; columns are
// never reordered.
var RequiredHeader = []string{
	"Review_Id", "App_Name", "Review_Date", "Rating", "Inserted_On", "Review_Text",
}

// Package-level logger for store operations
var (
	storeLogger   *slog.Logger
	storeLevelVar = new(slog.LevelVar)
)

func init() {
	storeLevelVar.Set(slog.LevelInfo)
	storeLogger = logging.ForService("sheetstore", storeLevelVar)
}

// Store is a Google Sheets backed review store.
type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

// New creates a store client for the configured spreadsheet. Without
// explicit client options it authenticates with the service account file
// from the settings; tests inject their own options.
func New(ctx context.Context, settings *conf.SheetSettings, opts ...option.ClientOption) (*Store, error) {
	if len(opts) == 0 {
		credPath := settings.ResolveCredentials()
		if _, err := os.Stat(credPath); err != nil {
			return nil, errors.Newf("service account file not found at %s", credPath).
				Component("sheetstore").
				Category(errors.CategoryCredentials).
				Context("credentials_path", credPath).
				Build()
		}
		opts = []option.ClientOption{
			option.WithCredentialsFile(credPath),
			option.WithScopes(sheets.SpreadsheetsScope),
		}
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.New(err).
			Component("sheetstore").
			Category(errors.CategoryStore).
			Context("spreadsheet_id", settings.SpreadsheetID).
			Build()
	}

	return &Store{
		svc:           svc,
		spreadsheetID: settings.SpreadsheetID,
		worksheet:     settings.WorksheetName,
	}, nil
}

// EnsureWorksheet creates the worksheet with the required header when
// absent and appends any missing header columns at the first free position.
// Existing row data is never touched. Idempotent.
func (s *Store) EnsureWorksheet(ctx context.Context) error {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return s.storeError(err, "fetch spreadsheet")
	}

	exists := false
	for _, sheet := range ss.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == s.worksheet {
			exists = true
			break
		}
	}

	if !exists {
		if err := s.createWorksheet(ctx); err != nil {
			return err
		}
		storeLogger.Info("Created worksheet", "worksheet", s.worksheet)
		return nil
	}

	return s.healHeader(ctx)
}

// createWorksheet adds the worksheet and writes the header row.
func (s *Store) createWorksheet(ctx context.Context) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: s.worksheet,
					GridProperties: &sheets.GridProperties{
						RowCount:    1000,
						ColumnCount: int64(len(RequiredHeader)),
					},
				},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return s.storeError(err, "add worksheet")
	}

	header := make([]any, len(RequiredHeader))
	for i, h := range RequiredHeader {
		header[i] = h
	}
	return s.updateRange(ctx, s.rangeRef("A1"), [][]any{header})
}

// healHeader compares row 1 against RequiredHeader and appends whatever is
// missing, one cell per missing column.
func (s *Store) healHeader(ctx context.Context) error {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeRef("1:1")).Context(ctx).Do()
	if err != nil {
		return s.storeError(err, "read header row")
	}

	var current []string
	if len(resp.Values) > 0 {
		for _, v := range resp.Values[0] {
			current = append(current, fmt.Sprint(v))
		}
	}

	if len(current) == 0 {
		header := make([]any, len(RequiredHeader))
		for i, h := range RequiredHeader {
			header[i] = h
		}
		return s.updateRange(ctx, s.rangeRef("A1"), [][]any{header})
	}

	for _, want := range RequiredHeader {
		if slices.Contains(current, want) {
			continue
		}
		cell := columnLetter(len(current)) + "1"
		if err := s.updateRange(ctx, s.rangeRef(cell), [][]any{{want}}); err != nil {
			return err
		}
		storeLogger.Warn("Added missing header column", "column", want, "cell", cell)
		current = append(current, want)
	}
	return nil
}

// Fingerprints loads the identifier column, excluding the header. This is
// the dedup set for a run.
func (s *Store) Fingerprints(ctx context.Context) (map[string]struct{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeRef("A2:A")).Context(ctx).Do()
	if err != nil {
		return nil, s.storeError(err, "read identifier column")
	}

	ids := make(map[string]struct{}, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if id := fmt.Sprint(row[0]); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

// UsedRows returns the number of occupied rows including the header.
func (s *Store) UsedRows(ctx context.Context) (int, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.rangeRef("A:A")).Context(ctx).Do()
	if err != nil {
		return 0, s.storeError(err, "count used rows")
	}
	return len(resp.Values), nil
}

// Append writes the records as a single batch at the end of the sheet.
func (s *Store) Append(ctx context.Context, records []review.Record) error {
	if len(records) == 0 {
		return nil
	}

	values := make([][]any, 0, len(records))
	for i := range records {
		values = append(values, records[i].Row())
	}

	vr := &sheets.ValueRange{Values: values}
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.rangeRef("A1"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return s.storeError(err, "append rows")
	}

	storeLogger.Info("Appended rows", "count", len(records))
	return nil
}

// rangeRef qualifies an A1-notation range with the worksheet name.
func (s *Store) rangeRef(ref string) string {
	return fmt.Sprintf("'%s'!%s", s.worksheet, ref)
}

func (s *Store) updateRange(ctx context.Context, ref string, values [][]any) error {
	vr := &sheets.ValueRange{Values: values}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, ref, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return s.storeError(err, "update range")
	}
	return nil
}

func (s *Store) storeError(err error, op string) error {
	return errors.New(fmt.Errorf("%s: %w", op, err)).
		Component("sheetstore").
		Category(errors.CategoryStore).
		Context("spreadsheet_id", s.spreadsheetID).
		Context("worksheet", s.worksheet).
		Build()
}

// columnLetter converts a zero-based column index to its A1 letter form.
func columnLetter(idx int) string {
	letters := ""
	for idx >= 0 {
		letters = string(rune('A'+idx%26)) + letters
		idx = idx/26 - 1
	}
	return letters
}
