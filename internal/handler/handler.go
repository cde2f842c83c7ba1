package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"wedding-relay/internal/otp"
	"wedding-relay/internal/party"
	"wedding-relay/internal/rsvp"
)

// GuestSearcher resolves a guest and their travel party
type GuestSearcher interface {
	Resolve(ctx context.Context, firstName, lastName string) (party.Result, error)
}

// RSVPSubmitter records a party's attendance decisions
type RSVPSubmitter interface {
	Submit(ctx context.Context, sub rsvp.Submission) (*rsvp.Result, error)
}

type Handlers struct {
	searcher  GuestSearcher
	submitter RSVPSubmitter
	totp      *otp.Generator
	inbox     *otp.Inbox
	log       zerolog.Logger
	now       func() time.Time
}

// New creates the HTTP handlers
func New(searcher GuestSearcher, submitter RSVPSubmitter, totp *otp.Generator, inbox *otp.Inbox, log zerolog.Logger) *Handlers {
	return &Handlers{
		searcher:  searcher,
		submitter: submitter,
		totp:      totp,
		inbox:     inbox,
		log:       log.With().Str("component", "HTTP").Logger(),
		now:       time.Now,
	}
}

// Routes builds the router
func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/up", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/wedding/rsvp", func(r chi.Router) {
		r.Get("/search", h.SearchGuest)
		r.Post("/", h.SubmitRSVP)
	})

	r.Route("/2fa", func(r chi.Router) {
		r.Get("/totp/{name}/value", h.TOTPValue)
		r.Post("/sms/{name}", h.ReceiveSMS)
		r.Get("/sms/{name}", h.LatestSMS)
	})

	return r
}

// accessLog writes one event per request
func (h *Handlers) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			h.log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("HTTP request completed")
		}()
		next.ServeHTTP(ww, r)
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
