// Package session is the identity source: it holds who is logged in and owns
// the identifier normalization every invitation query is scoped by.
package session

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/porteria/visitas-app/internal/api"
)

// Session is the authenticated user for the lifetime of the app. It is
// handed to the invitation controller explicitly; nothing reads it as
// ambient state.
type Session struct {
	// UserID is the identifier as entered at login (formatted RUT).
	UserID       string
	DisplayName  string
	Role         string
	Roles        []string
	Units        json.RawMessage
	Token        string
	TempPassword bool
	// ExpiresAt is the bearer token expiry when the token carries one;
	// zero otherwise. Display-only, the service enforces expiry itself.
	ExpiresAt time.Time
}

// New builds a session from a successful login.
func New(userID string, login *api.LoginResponse) *Session {
	s := &Session{
		UserID:       userID,
		DisplayName:  login.Username,
		Role:         login.Role,
		Roles:        login.Roles,
		Units:        login.Units,
		Token:        login.Token,
		TempPassword: login.TempPassword == 1,
	}
	if exp, ok := tokenExpiry(login.Token); ok {
		s.ExpiresAt = exp
	}
	return s
}

// NormalizedUserID is the session identifier in query-parameter form.
func (s *Session) NormalizedUserID() string {
	return NormalizeUserID(s.UserID)
}

// NormalizeUserID strips separator punctuation from a user identifier so
// every spelling of the same RUT ("12.345.678", "12345678") collapses to a
// single lookup key.
func NormalizeUserID(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '-', ' ':
			return -1
		}
		return r
	}, id)
}

// FormatRUT renders a RUT in its canonical dotted form with the verifier
// digit separated by a dash, e.g. "123456785" -> "12.345.678-5". Partial
// input is formatted as far as it goes, so the login field can format while
// the user types.
func FormatRUT(raw string) string {
	var clean strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			clean.WriteRune(r)
		case r == 'k' || r == 'K':
			clean.WriteByte('K')
		}
	}
	s := clean.String()
	if len(s) < 2 {
		return s
	}
	body, verifier := s[:len(s)-1], s[len(s)-1:]

	var grouped strings.Builder
	for i, digit := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}
	return grouped.String() + "-" + verifier
}

// tokenExpiry reads the exp claim without verifying the signature. The
// client has no key material and only uses expiry for display.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
