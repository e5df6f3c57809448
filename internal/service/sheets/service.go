package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ShiftBot/internal/config"
	"ShiftBot/internal/lib/sl"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Worksheet names inside the two spreadsheets.
const (
	reportsWorksheet = "reports"
	statesWorksheet  = "states"
	buttonsWorksheet = "ru_buttons"
	usersWorksheet   = "users"
)

// Service wraps the two Google spreadsheets the bot lives on: the report
// spreadsheet (system of record for finalized reports) and the config
// spreadsheet (screens, buttons, users).
type Service struct {
	api           *sheetsapi.Service
	reportSheetId string
	configSheetId string
	loc           *time.Location
	log           *slog.Logger
}

func NewService(ctx context.Context, conf *config.Config, loc *time.Location, log *slog.Logger) (*Service, error) {
	creds, err := os.ReadFile(conf.Sheets.CredsFile)
	if err != nil {
		return nil, fmt.Errorf("reading service account file: %w", err)
	}

	jwt, err := google.JWTConfigFromJSON(creds, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing service account credentials: %w", err)
	}

	api, err := sheetsapi.NewService(ctx, option.WithTokenSource(jwt.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}

	return &Service{
		api:           api,
		reportSheetId: conf.Sheets.ReportSheetId,
		configSheetId: conf.Sheets.ConfigSheetId,
		loc:           loc,
		log:           log.With(sl.Module("sheets")),
	}, nil
}

// values reads a range; an empty worksheet comes back as a nil slice.
func (s *Service) values(ctx context.Context, spreadsheetId, readRange string) ([][]interface{}, error) {
	res, err := s.api.Spreadsheets.Values.Get(spreadsheetId, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", readRange, err)
	}
	return res.Values, nil
}

// cell returns the string form of a cell, tolerating short rows.
func cell(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return fmt.Sprintf("%v", row[idx])
}

// headerIndex maps header names to column positions, the way the sheets are
// consumed by header rather than by fixed position.
func headerIndex(header []interface{}) map[string]int {
	idx := make(map[string]int, len(header))
	for i := range header {
		idx[cell(header, i)] = i
	}
	return idx
}
