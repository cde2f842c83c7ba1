package models

import (
	"strings"
	"time"
)

// RowLocator is the 1-indexed row number of a guest in the directory sheet.
// It is bound to the read it came from and is not re-validated before writes.
type RowLocator int

// Valid reports whether the locator can point at a guest row. Row 1 is the header.
func (r RowLocator) Valid() bool {
	return r >= 2
}

// GuestRecord represents one invitee row of the directory
type GuestRecord struct {
	ID           string     `json:"id"`
	InvitedBy    string     `json:"invitedBy"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Nickname     string     `json:"nickname"`
	Country      string     `json:"country"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	TravelParty  string     `json:"travelParty"`
	TravelOrigin string     `json:"travelOrigin"`
	TotalGuests  string     `json:"totalGuests,omitempty"`
	Row          RowLocator `json:"rowIndex"`
}

// DisplayName returns "First Last", trimmed when the last name is empty.
func (g GuestRecord) DisplayName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}

// Party is the ordered set of guests traveling together.
type Party []GuestRecord

// RSVPStatus represents the attendance confirmation status
type RSVPStatus string

const (
	RSVPAccepted RSVPStatus = "accepted"
	RSVPDeclined RSVPStatus = "declined"
)

// ParseRSVPStatus maps submitted text to a status. Anything other than
// "accepted" is treated as a decline.
func ParseRSVPStatus(s string) RSVPStatus {
	if strings.EqualFold(strings.TrimSpace(s), string(RSVPAccepted)) {
		return RSVPAccepted
	}
	return RSVPDeclined
}

// AttendanceDecision is one guest's submitted answer.
type AttendanceDecision struct {
	Key         string     `json:"-"`
	DisplayName string     `json:"displayName"`
	FirstName   string     `json:"firstName,omitempty"`
	LastName    string     `json:"lastName,omitempty"`
	Status      RSVPStatus `json:"status"`
	Row         RowLocator `json:"rowIndex"`
}

// Name is the join key against dietary notes.
func (d AttendanceDecision) Name() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// GuestResponse is one line of a submission summary.
type GuestResponse struct {
	Name      string  `json:"name"`
	Attending bool    `json:"attending"`
	Dietary   *string `json:"dietary"`
}

// SubmissionSummary reflects what was submitted, not what was stored.
type SubmissionSummary struct {
	ID           string          `json:"id"`
	SubmittedAt  time.Time       `json:"submittedAt"`
	SearchedName string          `json:"searchedName"`
	FoundGuest   string          `json:"foundGuest"`
	Responses    []GuestResponse `json:"responses"`
}
