package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ShiftBot/entity"

	sheetsapi "google.golang.org/api/sheets/v4"
)

func singleRow(row []interface{}) *sheetsapi.ValueRange {
	return &sheetsapi.ValueRange{Values: [][]interface{}{row}}
}

// Exists reports whether a report row for the date is already present.
// Column A is the date; the first row is the header.
func (s *Service) Exists(ctx context.Context, date string) (bool, error) {
	rows, err := s.values(ctx, s.reportSheetId, reportsWorksheet+"!A:A")
	if err != nil {
		return false, err
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if strings.TrimSpace(cell(row, 0)) == date {
			return true, nil
		}
	}
	return false, nil
}

// Submit writes a finalized report. With overwrite set, every row carrying
// the same date is replaced in place; otherwise the report is appended.
func (s *Service) Submit(ctx context.Context, rec entity.ReportRecord, overwrite bool) error {
	row := []interface{}{
		rec.Date,
		rec.Author,
		rec.Wolt,
		rec.Bolt,
		rec.Yandex,
		rec.Temp,
		rec.WeatherLabel,
		time.Now().In(s.loc).Format("02.01.06 15:04"),
	}

	if overwrite {
		return s.overwriteRows(ctx, rec.Date, row)
	}

	_, err := s.api.Spreadsheets.Values.
		Append(s.reportSheetId, reportsWorksheet+"!A:H", singleRow(row)).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending report for %s: %w", rec.Date, err)
	}

	s.log.Info("report appended", slog.String("date", rec.Date), slog.String("author", rec.Author))
	return nil
}

func (s *Service) overwriteRows(ctx context.Context, date string, row []interface{}) error {
	rows, err := s.values(ctx, s.reportSheetId, reportsWorksheet+"!A:A")
	if err != nil {
		return err
	}

	replaced := 0
	for i, existing := range rows {
		if i == 0 {
			continue
		}
		if strings.TrimSpace(cell(existing, 0)) != date {
			continue
		}
		// Sheet rows are 1-based.
		target := fmt.Sprintf("%s!A%d:H%d", reportsWorksheet, i+1, i+1)
		_, err := s.api.Spreadsheets.Values.
			Update(s.reportSheetId, target, singleRow(row)).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("overwriting report row %d for %s: %w", i+1, date, err)
		}
		replaced++
	}
	if replaced == 0 {
		// The colliding row disappeared between the check and the save.
		return fmt.Errorf("no report row found for %s to overwrite", date)
	}

	s.log.Info("report overwritten", slog.String("date", date), slog.Int("rows", replaced))
	return nil
}
