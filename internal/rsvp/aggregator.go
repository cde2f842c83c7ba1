// Package rsvp turns a party's attendance decisions into directory writes.
package rsvp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wedding-relay/internal/directory"
	"wedding-relay/internal/events"
	"wedding-relay/internal/models"
)

// ErrMissingRequiredFields is returned before any write when the found
// guest, party or attendance is absent.
var ErrMissingRequiredFields = errors.New("missing required RSVP information")

// WriteOutcome is the settled result of one guest's directory write.
// Skipped is set for decisions that carry no row locator; nothing is
// written for them and they do not count as failures.
type WriteOutcome struct {
	Name    string
	Row     models.RowLocator
	Text    string
	Skipped bool
	Err     error
}

// Result is returned once every write has settled.
type Result struct {
	Summary        models.SubmissionSummary
	Outcomes       []WriteOutcome
	UpdatesSuccess bool
}

// Failed returns the outcomes whose write did not succeed.
func (r *Result) Failed() []WriteOutcome {
	var failed []WriteOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

type Aggregator struct {
	store     directory.Store
	publisher events.Publisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewAggregator creates an aggregator writing to store and announcing
// submissions on publisher. A nil publisher disables events.
func NewAggregator(store directory.Store, publisher events.Publisher, log zerolog.Logger) *Aggregator {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Aggregator{
		store:     store,
		publisher: publisher,
		log:       log.With().Str("component", "RSVP").Logger(),
		now:       time.Now,
	}
}

// ResponseText is the text stored in the Response column. Dietary notes are
// only recorded for guests who accepted.
func ResponseText(status models.RSVPStatus, dietary string) string {
	if status != models.RSVPAccepted {
		return "Declined"
	}
	if dietary != "" {
		return fmt.Sprintf("Accepted (Dietary: %s)", dietary)
	}
	return "Accepted"
}

// Submit writes one Response cell per decision. Writes run concurrently and
// independently: a failed write is recorded in its outcome and never stops
// the others. The summary reflects what was submitted regardless of storage.
func (a *Aggregator) Submit(ctx context.Context, sub Submission) (*Result, error) {
	if sub.FoundGuest == nil || len(sub.Party) == 0 || len(sub.Attendance) == 0 {
		return nil, ErrMissingRequiredFields
	}

	summary := models.SubmissionSummary{
		ID:           uuid.NewString(),
		SubmittedAt:  a.now().UTC(),
		SearchedName: sub.searchedName(),
		FoundGuest:   sub.FoundGuest.DisplayName(),
		Responses:    make([]models.GuestResponse, 0, len(sub.Attendance)),
	}

	outcomes := make([]WriteOutcome, len(sub.Attendance))
	for i, d := range sub.Attendance {
		name := d.Name()
		note := sub.Dietary[name]

		resp := models.GuestResponse{Name: name, Attending: d.Status == models.RSVPAccepted}
		if note != "" {
			resp.Dietary = &note
		}
		summary.Responses = append(summary.Responses, resp)

		outcomes[i] = WriteOutcome{Name: name, Row: d.Row, Text: ResponseText(d.Status, note), Skipped: d.Row == 0}
	}

	a.writeAll(ctx, outcomes)

	result := &Result{Summary: summary, Outcomes: outcomes, UpdatesSuccess: true}
	for _, o := range outcomes {
		if o.Skipped {
			a.log.Warn().Str("guest", o.Name).Msg("No row locator, response not recorded")
			continue
		}
		if o.Err != nil {
			result.UpdatesSuccess = false
			a.log.Error().Err(o.Err).
				Str("guest", o.Name).
				Int("row", int(o.Row)).
				Msg("Failed to update guest response")
		}
	}

	a.log.Info().
		Str("submission", summary.ID).
		Str("found_guest", summary.FoundGuest).
		Int("responses", len(summary.Responses)).
		Bool("updates_success", result.UpdatesSuccess).
		Msg("Processed RSVP")

	a.announce(ctx, result)
	return result, nil
}

// writeAll dispatches every write at once and waits for all of them to
// settle. Writes are detached from ctx cancellation once started.
func (a *Aggregator) writeAll(ctx context.Context, outcomes []WriteOutcome) {
	wctx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i := range outcomes {
		if outcomes[i].Skipped {
			continue
		}
		wg.Add(1)
		go func(o *WriteOutcome) {
			defer wg.Done()
			o.Err = a.write(wctx, o.Row, o.Text)
		}(&outcomes[i])
	}
	wg.Wait()
}

func (a *Aggregator) write(ctx context.Context, row models.RowLocator, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("write to row %d panicked: %v", row, r)
		}
	}()

	if !row.Valid() {
		return fmt.Errorf("row %d: %w", row, directory.ErrInvalidLocator)
	}
	return a.store.WriteCell(ctx, row, models.ColResponse, text)
}

func (a *Aggregator) announce(ctx context.Context, result *Result) {
	evt := events.RSVPSubmittedEvent{
		Summary:        result.Summary,
		UpdatesSuccess: result.UpdatesSuccess,
		FailedUpdates:  len(result.Failed()),
		PublishedAt:    a.now().UTC(),
	}
	if err := a.publisher.Publish(ctx, events.RSVPSubmitted, evt); err != nil {
		a.log.Warn().Err(err).Str("submission", result.Summary.ID).Msg("Failed to publish RSVP event")
	}
}

func trimJoin(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
