// Package party finds a guest in the directory and expands them to the set
// of guests they travel with.
package party

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"wedding-relay/internal/directory"
	"wedding-relay/internal/models"
)

// ErrFirstNameRequired is returned when the search has no first name.
var ErrFirstNameRequired = errors.New("first name is required")

// Result is the outcome of a search. Not finding anyone is not an error.
type Result struct {
	Found bool                `json:"found"`
	Guest *models.GuestRecord `json:"guest,omitempty"`
	Party models.Party        `json:"party,omitempty"`
}

type Resolver struct {
	store directory.Store
	log   zerolog.Logger
}

// NewResolver creates a resolver reading from the given directory store
func NewResolver(store directory.Store, log zerolog.Logger) *Resolver {
	return &Resolver{
		store: store,
		log:   log.With().Str("component", "PartyResolver").Logger(),
	}
}

// Resolve returns the first guest in document order whose first name (and
// last name, when given) matches, together with their travel party.
func (r *Resolver) Resolve(ctx context.Context, firstName, lastName string) (Result, error) {
	first := normalize(firstName)
	last := normalize(lastName)
	if first == "" {
		return Result{}, ErrFirstNameRequired
	}

	rows, err := r.store.ReadAll(ctx)
	if err != nil {
		return Result{}, err
	}
	guests := directory.ParseRows(rows)

	for i := range guests {
		g := guests[i]
		if normalize(g.FirstName) != first {
			continue
		}
		if last != "" && normalize(g.LastName) != last {
			continue
		}

		party := expand(guests, g)
		r.log.Debug().
			Str("guest", g.DisplayName()).
			Int("row", int(g.Row)).
			Int("party_size", len(party)).
			Msg("Resolved guest")
		return Result{Found: true, Guest: &g, Party: party}, nil
	}

	r.log.Debug().Str("first_name", firstName).Str("last_name", lastName).Msg("No guest matched")
	return Result{Found: false}, nil
}

// expand collects every guest sharing the matched guest's travel party.
func expand(guests []models.GuestRecord, matched models.GuestRecord) models.Party {
	code := strings.TrimSpace(matched.TravelParty)
	if code == "" {
		return models.Party{matched}
	}

	var party models.Party
	for _, g := range guests {
		if strings.TrimSpace(g.TravelParty) == code {
			party = append(party, g)
		}
	}
	if len(party) == 0 {
		return models.Party{matched}
	}
	return party
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
