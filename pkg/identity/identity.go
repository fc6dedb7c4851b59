// Package identity canonicalizes student identities so that records from the
// institutional roster and the grading platform can be compared.
//
// Normalization is deliberately shallow: emails are lowercased and trimmed,
// names are split and trimmed. No accent, punctuation or case folding is applied
// to names, because a name difference is what triggers a roster correction.
package identity

import (
	"strings"

	"github.com/agentstation/gradesync/pkg/errors"
)

// Reasons attached to rows that cannot produce an identity.
const (
	ReasonNoEmail        = "no email"
	ReasonInvalidStudent = "invalid student row"
)

// Identity is a canonical student identity. Email, when present, is the
// primary match key; the name fields are for display and may be corrected.
type Identity struct {
	Email     string `json:"email" yaml:"email"`
	LastName  string `json:"last_name" yaml:"last_name"`
	FirstName string `json:"first_name" yaml:"first_name"`
}

// Sortable renders the identity as "Last, First".
func (id Identity) Sortable() string {
	return id.LastName + ", " + id.FirstName
}

// SameName reports whether both name fields are byte-for-byte equal.
func (id Identity) SameName(first, last string) bool {
	return id.FirstName == first && id.LastName == last
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize builds an Identity from a roster "Last, First" name and an email.
// The email is checked first: a blank email yields a MalformedRecordError with
// reason "no email". A name without a comma (such as a "Points Possible" summary
// row) yields reason "invalid student row".
func Normalize(rawName, rawEmail string) (Identity, error) {
	email := NormalizeEmail(rawEmail)
	if email == "" {
		return Identity{}, errors.NewMalformedRecordError(0, ReasonNoEmail)
	}

	last, first, ok := strings.Cut(rawName, ",")
	if !ok {
		return Identity{}, errors.NewMalformedRecordError(0, ReasonInvalidStudent)
	}

	return Identity{
		Email:     email,
		LastName:  strings.TrimSpace(last),
		FirstName: strings.TrimSpace(first),
	}, nil
}

// SplitSortable splits a gradebook sortable name ("Last, First") leniently.
// A name without the ", " separator is returned whole as the last name.
func SplitSortable(name string) (last, first string) {
	last, first, _ = strings.Cut(name, ", ")
	return last, first
}
