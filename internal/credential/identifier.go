package credential

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"

	id "acadreg/pkg/domain"
)

// identifierVersion is mixed into the digest so a future encoding change
// cannot collide with identifiers derived under this scheme.
const identifierVersion = 0x01

// Identify deterministically derives a credential identifier from the
// credential's defining fields, the issuer, and the logical issuance time.
// Identical tuples (including issuedAt) always yield the same identifier;
// the store's uniqueness check relies on this to reject a second issuance of
// byte-identical content by the same issuer within the same logical second.
//
// Fields are length-prefixed before hashing so no two distinct tuples
// serialize identically ("ab"+"c" and "a"+"bc" must not collide).
func Identify(studentName, degree, field string, gradYear int, issuer id.Principal, issuedAt int64) id.CredentialID {
	h := sha256.New()
	h.Write([]byte{identifierVersion})
	writeString(h, studentName)
	writeString(h, degree)
	writeString(h, field)
	writeInt64(h, int64(gradYear))
	writeString(h, issuer.String())
	writeInt64(h, issuedAt)
	return id.CredentialID(hex.EncodeToString(h.Sum(nil)))
}

func writeString(h hash.Hash, s string) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(s)))
	h.Write(buf[:n])
	h.Write([]byte(s))
}

func writeInt64(h hash.Hash, v int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	h.Write(buf[:])
}
