package domain

import (
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"

	dErrors "acadreg/pkg/domain-errors"
)

// Principal is the authenticated identity of a caller as supplied by the
// execution substrate. It is opaque to the registry: the registry never
// interprets it beyond equality checks and map lookups.
type Principal string

// NilPrincipal is the null identity. It is never a valid administrator,
// issuer, or credential issuer reference.
const NilPrincipal Principal = ""

const maxPrincipalLen = 128

// ParsePrincipal validates an identity token received at a trust boundary.
// Principals must be non-empty, valid UTF-8, at most 128 bytes, and free of
// whitespace and control characters.
func ParsePrincipal(s string) (Principal, error) {
	if s == "" {
		return NilPrincipal, dErrors.New(dErrors.CodeInvalidArgument, "principal must not be empty")
	}
	if len(s) > maxPrincipalLen {
		return NilPrincipal, dErrors.New(dErrors.CodeInvalidArgument, "principal exceeds maximum length")
	}
	if !utf8.ValidString(s) {
		return NilPrincipal, dErrors.New(dErrors.CodeInvalidArgument, "principal must be valid UTF-8")
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return NilPrincipal, dErrors.New(dErrors.CodeInvalidArgument, "principal contains whitespace or control characters")
		}
	}
	return Principal(s), nil
}

func (p Principal) IsNil() bool {
	return p == NilPrincipal
}

func (p Principal) String() string {
	return string(p)
}

// CredentialID is the deterministic identifier of an issued credential:
// a lowercase hex encoding of a 32-byte digest.
type CredentialID string

// CredentialIDLen is the length of the hex form (SHA-256 digest).
const CredentialIDLen = 64

// ParseCredentialID validates an identifier received at a trust boundary.
// Uppercase hex is accepted and normalized to the canonical lowercase form.
func ParseCredentialID(s string) (CredentialID, error) {
	if len(s) != CredentialIDLen {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "credential id must be 64 hex characters")
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "credential id must be hex encoded")
	}
	return CredentialID(strings.ToLower(s)), nil
}

func (id CredentialID) String() string {
	return string(id)
}
