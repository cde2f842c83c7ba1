package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"wedding-relay/internal/models"
	"wedding-relay/internal/party"
	"wedding-relay/internal/rsvp"
)

type searchError struct {
	Found   bool   `json:"found"`
	Message string `json:"message"`
}

type rsvpResponse struct {
	Status         string                    `json:"status"`
	Message        string                    `json:"message"`
	Summary        *models.SubmissionSummary `json:"summary,omitempty"`
	UpdatesSuccess *bool                     `json:"updatesSuccess,omitempty"`
}

// SearchGuest handles GET /wedding/rsvp/search?firstName=&lastName=
func (h *Handlers) SearchGuest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result, err := h.searcher.Resolve(r.Context(), q.Get("firstName"), q.Get("lastName"))
	switch {
	case errors.Is(err, party.ErrFirstNameRequired):
		h.writeJSON(w, http.StatusBadRequest, searchError{Message: "First name is required"})
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Error searching for guest")
		h.writeJSON(w, http.StatusInternalServerError, searchError{Message: "An error occurred while searching for guest"})
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// SubmitRSVP handles POST /wedding/rsvp
func (h *Handlers) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	var sub rsvp.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.writeJSON(w, http.StatusBadRequest, rsvpResponse{Status: "error", Message: "Invalid request body"})
		return
	}

	h.log.Info().
		Str("searched_first_name", sub.SearchedFirstName).
		Str("searched_last_name", sub.SearchedLastName).
		Int("decisions", len(sub.Attendance)).
		Msg("RSVP submission")

	result, err := h.submitter.Submit(r.Context(), sub)
	switch {
	case errors.Is(err, rsvp.ErrMissingRequiredFields):
		h.writeJSON(w, http.StatusBadRequest, rsvpResponse{Status: "error", Message: "Missing required RSVP information"})
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Error processing RSVP")
		h.writeJSON(w, http.StatusInternalServerError, rsvpResponse{Status: "error", Message: "An error occurred while processing your RSVP"})
		return
	}

	h.writeJSON(w, http.StatusOK, rsvpResponse{
		Status:         "success",
		Message:        "RSVP received successfully!",
		Summary:        &result.Summary,
		UpdatesSuccess: &result.UpdatesSuccess,
	})
}
