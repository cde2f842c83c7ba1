package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wedding-relay/internal/otp"
)

type smsView struct {
	Found            bool            `json:"found"`
	ReceivedAt       *time.Time      `json:"receivedAt,omitempty"`
	ElapsedSeconds   int             `json:"elapsedSeconds,omitempty"`
	ExpiresInSeconds int             `json:"expiresInSeconds,omitempty"`
	Code             string          `json:"code,omitempty"`
	Body             json.RawMessage `json:"body,omitempty"`
}

// TOTPValue handles GET /2fa/totp/{name}/value
func (h *Handlers) TOTPValue(w http.ResponseWriter, r *http.Request) {
	code, err := h.totp.Code(chi.URLParam(r, "name"), h.now())
	if errors.Is(err, otp.ErrUnknownSecret) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to generate TOTP code")
		http.Error(w, "failed to generate code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, code)
}

// ReceiveSMS handles POST /2fa/sms/{name}
func (h *Handlers) ReceiveSMS(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, rsvpResponse{Status: "error", Message: "Invalid request body"})
		return
	}
	if !json.Valid(body) {
		// keep non-JSON payloads readable as a JSON string
		body, _ = json.Marshal(string(body))
	}

	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}

	h.inbox.Put(name, otp.Capture{Headers: headers, Body: body, ReceivedAt: h.now()})
	h.log.Info().Str("inbox", name).RawJSON("body", body).Msg("SMS webhook received")

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"message":  "SMS webhook received and logged",
		"received": json.RawMessage(body),
	})
}

// LatestSMS handles GET /2fa/sms/{name}
func (h *Handlers) LatestSMS(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	c, ok := h.inbox.Latest(chi.URLParam(r, "name"), now)
	if !ok {
		h.writeJSON(w, http.StatusOK, smsView{Found: false})
		return
	}

	elapsed := now.Sub(c.ReceivedAt)
	code, _ := c.Code()
	h.writeJSON(w, http.StatusOK, smsView{
		Found:            true,
		ReceivedAt:       &c.ReceivedAt,
		ElapsedSeconds:   int(elapsed.Seconds()),
		ExpiresInSeconds: int((h.inbox.TTL() - elapsed).Seconds()),
		Code:             code,
		Body:             c.Body,
	})
}
