package party

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-relay/internal/directory"
	"wedding-relay/internal/models"
)

type staticStore struct {
	rows [][]string
	err  error
}

func (s *staticStore) ReadAll(context.Context) ([][]string, error) {
	return s.rows, s.err
}

func (s *staticStore) WriteCell(context.Context, models.RowLocator, models.Column, string) error {
	return errors.New("read only")
}

func guestRow(first, last, travelParty string) []string {
	row := make([]string, models.NumColumns)
	row[models.ColFirstName] = first
	row[models.ColLastName] = last
	row[models.ColTravelParty] = travelParty
	return row
}

func testRows() [][]string {
	return [][]string{
		models.HeaderRow(),
		guestRow("Maria", "Lopez", "LOPEZ"),
		guestRow("John", "Smith", "SMITH"),
		guestRow("Maria", "Garcia", ""),
		guestRow("Jane", "Smith", "SMITH"),
		guestRow("Pedro", "Lopez", "LOPEZ"),
		guestRow("Solo", "", ""),
	}
}

func newTestResolver(rows [][]string) *Resolver {
	return NewResolver(&staticStore{rows: rows}, zerolog.Nop())
}

func TestResolve_CaseAndWhitespace(t *testing.T) {
	r := newTestResolver(testRows())

	for _, q := range []string{"john", "JOHN", "  John ", "jOhN"} {
		res, err := r.Resolve(context.Background(), q, "")
		require.NoError(t, err)
		require.True(t, res.Found, q)
		assert.Equal(t, "John", res.Guest.FirstName)
	}
}

func TestResolve_FirstRowWins(t *testing.T) {
	r := newTestResolver(testRows())

	res, err := r.Resolve(context.Background(), "Maria", "")
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, "Lopez", res.Guest.LastName)
	assert.Equal(t, models.RowLocator(2), res.Guest.Row)
}

func TestResolve_LastNameNarrows(t *testing.T) {
	r := newTestResolver(testRows())

	res, err := r.Resolve(context.Background(), "maria", " GARCIA ")
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, models.RowLocator(4), res.Guest.Row)
}

func TestResolve_PartyExpansion(t *testing.T) {
	r := newTestResolver(testRows())

	for _, q := range []string{"Maria", "Pedro"} {
		res, err := r.Resolve(context.Background(), q, "Lopez")
		require.NoError(t, err)
		require.True(t, res.Found)

		require.Len(t, res.Party, 2)
		assert.Equal(t, "Maria", res.Party[0].FirstName)
		assert.Equal(t, "Pedro", res.Party[1].FirstName)
		for _, g := range res.Party {
			assert.Equal(t, "LOPEZ", g.TravelParty)
			assert.True(t, g.Row.Valid())
		}
	}
}

func TestResolve_EmptyTravelPartyIsSingleton(t *testing.T) {
	r := newTestResolver(testRows())

	res, err := r.Resolve(context.Background(), "Maria", "Garcia")
	require.NoError(t, err)
	require.Len(t, res.Party, 1)
	assert.Equal(t, *res.Guest, res.Party[0])

	// Solo shares an empty travel party with Maria Garcia but is not grouped with her
	res, err = r.Resolve(context.Background(), "solo", "")
	require.NoError(t, err)
	require.Len(t, res.Party, 1)
	assert.Equal(t, "Solo", res.Party[0].FirstName)
}

func TestResolve_NotFound(t *testing.T) {
	r := newTestResolver(testRows())

	res, err := r.Resolve(context.Background(), "Nobody", "")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.Guest)

	res, err = r.Resolve(context.Background(), "John", "Lopez")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestResolve_EmptyDirectory(t *testing.T) {
	res, err := newTestResolver(nil).Resolve(context.Background(), "Maria", "")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestResolve_FirstNameRequired(t *testing.T) {
	_, err := newTestResolver(testRows()).Resolve(context.Background(), "  ", "Lopez")
	assert.ErrorIs(t, err, ErrFirstNameRequired)
}

func TestResolve_StoreUnavailable(t *testing.T) {
	store := &staticStore{err: directory.ErrStoreUnavailable}
	_, err := NewResolver(store, zerolog.Nop()).Resolve(context.Background(), "Maria", "")
	assert.ErrorIs(t, err, directory.ErrStoreUnavailable)
}
