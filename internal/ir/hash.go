package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainDeclaration = "optchain/declaration/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null separator
// prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DeclarationHash computes the content hash of a declaration, including its
// enclosing context and target names. Two declarations with the same hash
// transform to identical output, so the hash keys the transformation cache.
func DeclarationHash(decl Declaration) (string, error) {
	canonical, err := CanonicalOf(struct {
		IRVersion string      `json:"ir_version"`
		Decl      Declaration `json:"decl"`
	}{IRVersion, decl})
	if err != nil {
		return "", fmt.Errorf("DeclarationHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDeclaration, canonical), nil
}

// MustDeclarationHash is like DeclarationHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDeclarationHash(decl Declaration) string {
	h, err := DeclarationHash(decl)
	if err != nil {
		panic(err)
	}
	return h
}
