package models

// Column is the 0-indexed offset of a directory column (A..K).
type Column int

const (
	ColInvitedBy Column = iota
	ColFirstName
	ColLastName
	ColNickname
	ColCountry
	ColPhone
	ColEmail
	ColTravelParty
	ColTravelOrigin
	ColTotalGuests
	ColResponse

	// NumColumns is the width of the directory range.
	NumColumns = int(ColResponse) + 1
)

var columnNames = [...]string{
	"Invited by",
	"First name",
	"Last name",
	"Nickname",
	"Country",
	"Phone",
	"Email",
	"Travel Party",
	"Travel Origin",
	"Total guest(s)",
	"Response",
}

// Letter returns the A1 column letter. Only single letters are needed.
func (c Column) Letter() string {
	return string(rune('A' + int(c)))
}

func (c Column) String() string {
	if c < 0 || int(c) >= len(columnNames) {
		return "Column(" + c.Letter() + ")"
	}
	return columnNames[c]
}

// HeaderRow returns the header cells in column order.
func HeaderRow() []string {
	out := make([]string, len(columnNames))
	copy(out, columnNames[:])
	return out
}
