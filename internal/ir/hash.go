package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/roach88/pyrs/internal/lang"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainProgram = "pyrs/program/v1"
	DomainSource  = "pyrs/source/v1"
	DomainIdioms  = "pyrs/idioms/v1"
)

// Digest computes a SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func Digest(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes a content hash of a lowered program. Programs that
// dump to the same Node trees for the same pair hash identically.
func Fingerprint[P lang.Pair](stmts []Statement[P]) (string, error) {
	data, err := json.Marshal(DumpAll(stmts))
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return Digest(DomainProgram+"/"+lang.Describe[P](), data), nil
}
