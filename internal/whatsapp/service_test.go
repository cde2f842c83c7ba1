package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhoneNumber(t *testing.T) {
	cases := []struct {
		phone, country, want string
	}{
		{"081-234-5678", "TH", "66812345678"},
		{"081-234-5678", "Thailand", "66812345678"},
		{"0917 123 4567", "PH", "639171234567"},
		{"0501234567", "IL", "972501234567"},
		{"9720501234567", "IL", "972501234567"},
		{"0066812345678", "TH", "66812345678"},
		{"+63 917 123 4567", "TH", "639171234567"},
		{"+972 50-123-4567", "", "972501234567"},
		{"+1 (555) 0100", "US", "15550100"},
		{"081-234-5678", "", "0812345678"},
		{"081-234-5678", "Atlantis", "0812345678"},
		{"639171234567", "PH", "639171234567"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizePhoneNumber(c.phone, c.country), "%s (%s)", c.phone, c.country)
	}
}
