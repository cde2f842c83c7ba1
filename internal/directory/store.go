// Package directory reads and writes the guest directory, a column-indexed
// table whose first row is a header.
package directory

import (
	"context"
	"errors"
	"fmt"

	"wedding-relay/internal/models"
)

var (
	// ErrStoreUnavailable means the backing store could not be reached or
	// rejected the credentials.
	ErrStoreUnavailable = errors.New("directory store unavailable")
	// ErrInvalidLocator means a write targeted a row outside the store's bounds.
	ErrInvalidLocator = errors.New("invalid row locator")
)

// Store is the I/O boundary to the directory. Implementations hold no
// business logic.
type Store interface {
	// ReadAll returns every row including the header at index 0.
	ReadAll(ctx context.Context) ([][]string, error)
	// WriteCell overwrites a single cell with user-entered text.
	WriteCell(ctx context.Context, row models.RowLocator, col models.Column, value string) error
}

// ParseRows converts raw rows into guest records, skipping the header.
// Row locators are sourceIndex+1 so the first guest lives at row 2.
func ParseRows(rows [][]string) []models.GuestRecord {
	if len(rows) < 2 {
		return nil
	}
	guests := make([]models.GuestRecord, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		guests = append(guests, parseRow(i, rows[i]))
	}
	return guests
}

func parseRow(index int, row []string) models.GuestRecord {
	return models.GuestRecord{
		ID:           fmt.Sprintf("guest-%d", index),
		InvitedBy:    cell(row, models.ColInvitedBy),
		FirstName:    cell(row, models.ColFirstName),
		LastName:     cell(row, models.ColLastName),
		Nickname:     cell(row, models.ColNickname),
		Country:      cell(row, models.ColCountry),
		Phone:        cell(row, models.ColPhone),
		Email:        cell(row, models.ColEmail),
		TravelParty:  cell(row, models.ColTravelParty),
		TravelOrigin: cell(row, models.ColTravelOrigin),
		TotalGuests:  cell(row, models.ColTotalGuests),
		Row:          models.RowLocator(index + 1),
	}
}

// cell tolerates short rows; the Sheets API drops trailing empty cells.
func cell(row []string, col models.Column) string {
	if int(col) >= len(row) {
		return ""
	}
	return row[col]
}

func unavailable(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStoreUnavailable, err)
}
