// Package id issues the identifiers used across the account and
// catalogue tables.
package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID. The timestamp prefix keeps ids roughly ordered
// by creation, which suits them for user, course, and lesson keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
