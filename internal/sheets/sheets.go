// Package sheets reads campaign input and appends outcome rows via the
// Google Sheets API.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/sheets/v4"
)

// Default ranges for the campaign spreadsheet.
const (
	// DefaultInputRange holds company URLs in the first column, with a
	// header row.
	DefaultInputRange = "Sheet1!A:A"
	// DefaultSuccessRange receives [company_url, contact_email, contact_name]
	// rows.
	DefaultSuccessRange = "Success!A:C"
	// DefaultFailureRange receives [domain] rows for failed lookups.
	DefaultFailureRange = "Failures!A:A"
)

// SheetError represents a spreadsheet API failure.
type SheetError struct {
	Range   string
	Message string
	Cause   error
}

func (e *SheetError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("sheet error for %s: %s: %v", e.Range, e.Message, e.Cause)
	}
	return fmt.Sprintf("sheet error for %s: %s", e.Range, e.Message)
}

func (e *SheetError) Unwrap() error {
	return e.Cause
}

// Ranges names the three spreadsheet ranges the campaign touches.
type Ranges struct {
	Input   string
	Success string
	Failure string
}

// DefaultRanges returns the standard campaign layout.
func DefaultRanges() Ranges {
	return Ranges{
		Input:   DefaultInputRange,
		Success: DefaultSuccessRange,
		Failure: DefaultFailureRange,
	}
}

// Log reads campaign input and appends outcome rows. Both logs are
// append-only; rows are never read back or deduplicated.
type Log struct {
	svc           *sheets.Service
	spreadsheetID string
	ranges        Ranges
	logger        *zap.Logger
}

// NewLog creates a Log for one spreadsheet.
func NewLog(svc *sheets.Service, spreadsheetID string, ranges Ranges, logger *zap.Logger) *Log {
	if ranges == (Ranges{}) {
		ranges = DefaultRanges()
	}
	return &Log{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		ranges:        ranges,
		logger:        logger,
	}
}

// CompanyURLs reads the input column, skipping the header row and blank
// cells.
func (l *Log) CompanyURLs(ctx context.Context) ([]string, error) {
	resp, err := l.svc.Spreadsheets.Values.Get(l.spreadsheetID, l.ranges.Input).
		Context(ctx).Do()
	if err != nil {
		return nil, &SheetError{Range: l.ranges.Input, Message: "read failed", Cause: err}
	}

	if len(resp.Values) == 0 {
		l.logger.Warn("no data found in input range", zap.String("range", l.ranges.Input))
		return nil, nil
	}

	var urls []string
	for _, row := range resp.Values[1:] {
		if len(row) == 0 {
			continue
		}
		if value, ok := row[0].(string); ok && strings.TrimSpace(value) != "" {
			urls = append(urls, value)
		}
	}

	l.logger.Info("read company URLs", zap.Int("count", len(urls)))
	return urls, nil
}

// AppendSuccess records a staged draft: [company_url, contact_email,
// contact_name].
func (l *Log) AppendSuccess(ctx context.Context, companyURL, contactEmail, contactName string) error {
	return l.append(ctx, l.ranges.Success, []interface{}{companyURL, contactEmail, contactName})
}

// AppendFailure records a domain with no discovered contacts: [domain].
func (l *Log) AppendFailure(ctx context.Context, domain string) error {
	return l.append(ctx, l.ranges.Failure, []interface{}{domain})
}

func (l *Log) append(ctx context.Context, rangeName string, row []interface{}) error {
	body := &sheets.ValueRange{
		Values: [][]interface{}{row},
	}

	_, err := l.svc.Spreadsheets.Values.Append(l.spreadsheetID, rangeName, body).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return &SheetError{Range: rangeName, Message: "append failed", Cause: err}
	}

	l.logger.Debug("appended row", zap.String("range", rangeName))
	return nil
}
