package directory

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"wedding-relay/internal/models"
)

func TestParseRows(t *testing.T) {
	rows := [][]string{
		models.HeaderRow(),
		{"Anna", "Maria", "Lopez", "Mari", "PH", "+63 900", "maria@example.com", "P1", "Manila", "2"},
		{"Anna", "John"},
	}

	guests := ParseRows(rows)
	require.Len(t, guests, 2)

	assert.Equal(t, "Maria", guests[0].FirstName)
	assert.Equal(t, "Lopez", guests[0].LastName)
	assert.Equal(t, "P1", guests[0].TravelParty)
	assert.Equal(t, models.RowLocator(2), guests[0].Row)
	assert.Equal(t, "guest-1", guests[0].ID)

	// short rows read missing cells as empty
	assert.Equal(t, "John", guests[1].FirstName)
	assert.Empty(t, guests[1].TravelParty)
	assert.Equal(t, models.RowLocator(3), guests[1].Row)
}

func TestParseRows_HeaderOnly(t *testing.T) {
	assert.Empty(t, ParseRows(nil))
	assert.Empty(t, ParseRows([][]string{models.HeaderRow()}))
}

func TestFileStore_CreatesHeader(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "guests.csv"))
	require.NoError(t, err)

	rows, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.HeaderRow(), rows[0])
}

func TestFileStore_WriteCell(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "guests.csv"))
	require.NoError(t, err)
	require.NoError(t, s.Append([]string{"", "Maria", "Lopez"}))

	require.NoError(t, s.WriteCell(ctx, 2, models.ColResponse, "Accepted (Dietary: vegetarian)"))

	rows, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows[1], models.NumColumns)
	assert.Equal(t, "Accepted (Dietary: vegetarian)", rows[1][models.ColResponse])
	assert.Equal(t, "Maria", rows[1][models.ColFirstName])

	// last write wins
	require.NoError(t, s.WriteCell(ctx, 2, models.ColResponse, "Declined"))
	rows, err = s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Declined", rows[1][models.ColResponse])
}

func TestFileStore_InvalidLocator(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "guests.csv"))
	require.NoError(t, err)
	require.NoError(t, s.Append([]string{"", "Maria"}))

	for _, row := range []models.RowLocator{0, 1, 3, 99} {
		err := s.WriteCell(ctx, row, models.ColResponse, "Accepted")
		assert.ErrorIs(t, err, ErrInvalidLocator, "row %d", row)
	}
}

type fakeSheets struct {
	mu     sync.Mutex
	values [][]string
	writes  map[string]string
	status  int
	message string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": f.status, "message": f.message},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		json.NewEncoder(w).Encode(map[string]any{"range": "Sheet1!A1:K9", "values": f.values})
	case http.MethodPut:
		var body struct {
			Values [][]string `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		rng := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		f.writes[rng+"|"+r.URL.Query().Get("valueInputOption")] = body.Values[0][0]
		io.WriteString(w, `{}`)
	}
}

func newTestSheetsStore(t *testing.T, fake *fakeSheets) *SheetsStore {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewSheetsStore(context.Background(),
		SheetsConfig{SpreadsheetID: "sheet-id"},
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return s
}

func TestSheetsStore_ReadAll(t *testing.T) {
	fake := &fakeSheets{values: [][]string{models.HeaderRow(), {"Anna", "Maria"}}}
	s := newTestSheetsStore(t, fake)

	rows, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Anna", "Maria"}, rows[1])
}

func TestSheetsStore_WriteCell(t *testing.T) {
	fake := &fakeSheets{writes: map[string]string{}}
	s := newTestSheetsStore(t, fake)

	require.NoError(t, s.WriteCell(context.Background(), 5, models.ColResponse, "Declined"))
	assert.Equal(t, "Declined", fake.writes["Sheet1!K5|USER_ENTERED"])
}

func TestSheetsStore_WriteOutOfGrid(t *testing.T) {
	fake := &fakeSheets{
		status:  http.StatusBadRequest,
		message: "Range ('Sheet1'!K5000) exceeds grid limits. Max rows: 1000, max columns: 26",
	}
	s := newTestSheetsStore(t, fake)

	err := s.WriteCell(context.Background(), 5000, models.ColResponse, "Declined")
	assert.ErrorIs(t, err, ErrInvalidLocator)

	err = s.WriteCell(context.Background(), 1, models.ColResponse, "Declined")
	assert.ErrorIs(t, err, ErrInvalidLocator)
}

func TestSheetsStore_Unavailable(t *testing.T) {
	fake := &fakeSheets{status: http.StatusForbidden, message: "The caller does not have permission"}
	s := newTestSheetsStore(t, fake)

	_, err := s.ReadAll(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	err = s.WriteCell(context.Background(), 2, models.ColResponse, "Declined")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidLocator)
}

func TestSheetsStore_BadSheetNameIsUnavailable(t *testing.T) {
	fake := &fakeSheets{status: http.StatusBadRequest, message: "Unable to parse range: Shet1!K2"}
	s := newTestSheetsStore(t, fake)

	err := s.WriteCell(context.Background(), 2, models.ColResponse, "Declined")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidLocator)
}
