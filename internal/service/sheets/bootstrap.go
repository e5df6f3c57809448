package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"ShiftBot/entity"
	"ShiftBot/internal/lib/sl"

	sheetsapi "google.golang.org/api/sheets/v4"
)

// FetchStates reads the screen definitions from the config spreadsheet.
// Rows without a state_key are skipped.
func (s *Service) FetchStates(ctx context.Context) ([]entity.StateDefinition, error) {
	rows, err := s.values(ctx, s.configSheetId, statesWorksheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet %s is empty", statesWorksheet)
	}

	idx := headerIndex(rows[0])
	states := make([]entity.StateDefinition, 0, len(rows)-1)
	for _, row := range rows[1:] {
		key := cell(row, idx["state_key"])
		if key == "" {
			continue
		}
		states = append(states, entity.StateDefinition{
			Key:            key,
			Comment:        cell(row, idx["comment"]),
			PhraseAdmin:    cell(row, idx["phrase_admin"]),
			PhraseManager:  cell(row, idx["phrase_manager"]),
			PhraseUser:     cell(row, idx["phrase_user"]),
			ButtonsAdmin:   cell(row, idx["buttons_admin"]),
			ButtonsManager: cell(row, idx["buttons_manager"]),
			ButtonsUser:    cell(row, idx["buttons_user"]),
		})
	}

	s.log.Info("states fetched", slog.Int("count", len(states)))
	return states, nil
}

// FetchButtons reads the button labels from the config spreadsheet.
func (s *Service) FetchButtons(ctx context.Context) ([]entity.ButtonDefinition, error) {
	rows, err := s.values(ctx, s.configSheetId, buttonsWorksheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet %s is empty", buttonsWorksheet)
	}

	idx := headerIndex(rows[0])
	buttons := make([]entity.ButtonDefinition, 0, len(rows)-1)
	for _, row := range rows[1:] {
		key := cell(row, idx["key"])
		if key == "" {
			continue
		}
		buttons = append(buttons, entity.ButtonDefinition{
			Key:   key,
			Label: cell(row, idx["label"]),
		})
	}

	s.log.Info("buttons fetched", slog.Int("count", len(buttons)))
	return buttons, nil
}

// FetchUsers reads the user roster from the config spreadsheet. Malformed
// drafts degrade to an empty draft rather than failing the whole fetch.
func (s *Service) FetchUsers(ctx context.Context) ([]entity.User, error) {
	rows, err := s.values(ctx, s.configSheetId, usersWorksheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet %s is empty", usersWorksheet)
	}

	idx := headerIndex(rows[0])
	users := make([]entity.User, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rawId := cell(row, idx["user_id"])
		if rawId == "" {
			continue
		}
		userId, err := strconv.ParseInt(rawId, 10, 64)
		if err != nil {
			s.log.Warn("skipping user row with bad id", slog.String("user_id", rawId))
			continue
		}

		role := cell(row, idx["role"])
		if role == "" {
			role = entity.GuestRole
		}

		messageId, _ := strconv.ParseInt(cell(row, idx["last_message_id"]), 10, 64)

		var draft entity.ReportDraft
		if raw := cell(row, idx["daily_report_draft"]); raw != "" {
			if err := json.Unmarshal([]byte(raw), &draft); err != nil {
				s.log.Warn("unparsable draft, resetting",
					slog.Int64("user", userId),
					sl.Err(err),
				)
				draft = entity.ReportDraft{}
			}
		}

		users = append(users, entity.User{
			TelegramId:    userId,
			Name:          cell(row, idx["name"]),
			Role:          role,
			State:         cell(row, idx["state"]),
			LastMessageId: messageId,
			Workday:       isTrue(cell(row, idx["is_workday"])),
			Draft:         draft,
		})
	}

	s.log.Info("users fetched", slog.Int("count", len(users)))
	return users, nil
}

// WriteUsers clears the users worksheet and publishes the given roster.
func (s *Service) WriteUsers(ctx context.Context, users []entity.User) error {
	rows := make([][]interface{}, 0, len(users)+1)
	rows = append(rows, []interface{}{
		"user_id", "name", "role", "state", "last_message_id", "is_workday", "daily_report_draft",
	})
	for _, u := range users {
		draft, err := json.Marshal(u.Draft)
		if err != nil {
			return fmt.Errorf("encoding draft for user %d: %w", u.TelegramId, err)
		}
		workday := "FALSE"
		if u.Workday {
			workday = "TRUE"
		}
		rows = append(rows, []interface{}{
			u.TelegramId, u.Name, u.Role, u.State, u.LastMessageId, workday, string(draft),
		})
	}

	_, err := s.api.Spreadsheets.Values.
		Clear(s.configSheetId, usersWorksheet, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clearing %s: %w", usersWorksheet, err)
	}

	_, err = s.api.Spreadsheets.Values.
		Update(s.configSheetId, usersWorksheet+"!A1", &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("writing %s: %w", usersWorksheet, err)
	}

	s.log.Info("users worksheet rewritten", slog.Int("count", len(users)))
	return nil
}

func isTrue(v string) bool {
	return v == "TRUE" || v == "True" || v == "true"
}
