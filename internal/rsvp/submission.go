package rsvp

import (
	"bytes"
	"encoding/json"
	"fmt"

	"wedding-relay/internal/models"
)

// Submission is the RSVP form payload.
type Submission struct {
	SearchedFirstName string              `json:"searchedFirstName"`
	SearchedLastName  string              `json:"searchedLastName"`
	FoundGuest        *models.GuestRecord `json:"foundGuest"`
	Party             models.Party        `json:"party"`
	Attendance        Decisions           `json:"attendance"`
	Dietary           map[string]string   `json:"dietary"`
}

// Decisions keeps the attendance object's keys in the order they were sent.
type Decisions []models.AttendanceDecision

// UnmarshalJSON decodes {"key": {...}, ...} preserving key order.
func (d *Decisions) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("attendance must be an object")
	}

	out := Decisions{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var decision struct {
			models.AttendanceDecision
			Status string `json:"status"`
		}
		if err := dec.Decode(&decision); err != nil {
			return fmt.Errorf("attendance %q: %w", key, err)
		}
		decision.AttendanceDecision.Key = key
		decision.AttendanceDecision.Status = models.ParseRSVPStatus(decision.Status)
		out = append(out, decision.AttendanceDecision)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*d = out
	return nil
}

// MarshalJSON writes the decisions back as an object keyed like the input.
func (d Decisions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, decision := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key := decision.Key
		if key == "" {
			key = fmt.Sprintf("guest-%d", i)
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(decision)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s Submission) searchedName() string {
	return trimJoin(s.SearchedFirstName, s.SearchedLastName)
}
