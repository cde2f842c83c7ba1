package directory

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"wedding-relay/internal/models"
)

// SheetsConfig addresses one sheet of a Google spreadsheet.
type SheetsConfig struct {
	SpreadsheetID string
	SheetName     string
	// Credentials is a base64-encoded service account JSON key.
	Credentials string
}

// SheetsStore is a Store backed by the Google Sheets values API.
type SheetsStore struct {
	svc   *sheets.Service
	id    string
	sheet string
}

// NewSheetsStore creates a Sheets client. Extra options are appended after
// the credentials, which lets tests point the client at a local endpoint.
func NewSheetsStore(ctx context.Context, cfg SheetsConfig, opts ...option.ClientOption) (*SheetsStore, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}

	var clientOpts []option.ClientOption
	if cfg.Credentials != "" {
		creds, err := base64.StdEncoding.DecodeString(cfg.Credentials)
		if err != nil {
			return nil, fmt.Errorf("failed to decode service account credentials: %w", err)
		}
		clientOpts = append(clientOpts,
			option.WithCredentialsJSON(creds),
			option.WithScopes(sheets.SpreadsheetsScope),
		)
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, unavailable("create sheets client", err)
	}

	return &SheetsStore{svc: svc, id: cfg.SpreadsheetID, sheet: cfg.SheetName}, nil
}

// ReadAll reads columns A through K of the configured sheet.
func (s *SheetsStore) ReadAll(ctx context.Context) ([][]string, error) {
	rng := fmt.Sprintf("%s!A:%s", s.sheetRef(), models.ColResponse.Letter())
	resp, err := s.svc.Spreadsheets.Values.Get(s.id, rng).Context(ctx).Do()
	if err != nil {
		return nil, unavailable("read sheet", err)
	}

	rows := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, v := range raw {
			if v != nil {
				row[j] = fmt.Sprint(v)
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// WriteCell overwrites one cell, e.g. Sheet1!K5.
func (s *SheetsStore) WriteCell(ctx context.Context, row models.RowLocator, col models.Column, value string) error {
	if !row.Valid() {
		return fmt.Errorf("row %d: %w", row, ErrInvalidLocator)
	}

	rng := fmt.Sprintf("%s!%s%d", s.sheetRef(), col.Letter(), row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.svc.Spreadsheets.Values.Update(s.id, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && outOfGrid(apiErr) {
			return fmt.Errorf("row %d: %w: %w", row, ErrInvalidLocator, err)
		}
		return unavailable(fmt.Sprintf("write %s", rng), err)
	}
	return nil
}

// outOfGrid reports a write past the sheet's rows. Other 400s, such as an
// unparsable range from a wrong sheet name, are configuration errors.
func outOfGrid(err *googleapi.Error) bool {
	return err.Code == http.StatusBadRequest && strings.Contains(err.Message, "exceeds grid limits")
}

// sheetRef quotes sheet names that A1 notation cannot take bare.
func (s *SheetsStore) sheetRef() string {
	if strings.ContainsAny(s.sheet, " '!") {
		return "'" + strings.ReplaceAll(s.sheet, "'", "''") + "'"
	}
	return s.sheet
}
