// Package otp holds one-time-password helpers: TOTP codes for configured
// shared secrets and a short-lived inbox for codes delivered by SMS webhooks.
package otp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
)

// ErrUnknownSecret is returned for a name with no configured secret.
var ErrUnknownSecret = errors.New("unknown totp secret")

// Generator produces TOTP codes for named base32 secrets.
type Generator struct {
	secrets map[string]string
}

// NewGenerator accepts secrets in any case and grouped with spaces, as
// authenticator apps display them ("jbsw y3dp ehpk 3pxp").
func NewGenerator(secrets map[string]string) *Generator {
	normalized := make(map[string]string, len(secrets))
	for name, secret := range secrets {
		normalized[name] = NormalizeSecret(secret)
	}
	return &Generator{secrets: normalized}
}

// NormalizeSecret strips grouping and padding whitespace and upper-cases
// a base32 secret.
func NormalizeSecret(secret string) string {
	return strings.ToUpper(strings.Join(strings.Fields(secret), ""))
}

// Code returns the code for name that is valid at t.
func (g *Generator) Code(name string, t time.Time) (string, error) {
	secret, ok := g.secrets[name]
	if !ok {
		return "", fmt.Errorf("%q: %w", name, ErrUnknownSecret)
	}
	code, err := totp.GenerateCode(secret, t)
	if err != nil {
		return "", fmt.Errorf("failed to generate code for %q: %w", name, err)
	}
	return code, nil
}
