package otp

import (
	"encoding/json"
	"regexp"
	"sync"
	"time"
)

var sixDigits = regexp.MustCompile(`\b\d{6}\b`)

// Capture is one received SMS webhook.
type Capture struct {
	Headers    map[string]string `json:"headers"`
	Body       json.RawMessage   `json:"body"`
	ReceivedAt time.Time         `json:"receivedAt"`
}

// Code extracts the first 6-digit code from the body's "text" field.
func (c Capture) Code() (string, bool) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(c.Body, &body); err != nil || body.Text == "" {
		return "", false
	}
	code := sixDigits.FindString(body.Text)
	return code, code != ""
}

// Inbox keeps the latest capture per name and forgets it after ttl.
type Inbox struct {
	mu    sync.Mutex
	ttl   time.Duration
	boxes map[string]Capture
}

func NewInbox(ttl time.Duration) *Inbox {
	return &Inbox{ttl: ttl, boxes: make(map[string]Capture)}
}

// TTL is how long a capture stays readable.
func (in *Inbox) TTL() time.Duration {
	return in.ttl
}

// Put replaces the capture stored under name.
func (in *Inbox) Put(name string, c Capture) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.boxes[name] = c
}

// Latest returns the capture for name if it has not expired at now.
func (in *Inbox) Latest(name string, now time.Time) (Capture, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	c, ok := in.boxes[name]
	if !ok {
		return Capture{}, false
	}
	if now.Sub(c.ReceivedAt) > in.ttl {
		delete(in.boxes, name)
		return Capture{}, false
	}
	return c, true
}
