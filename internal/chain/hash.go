package chain

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/josh-kwaku/rentchain-audit/internal/domain"
)

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// PayloadHash is the SHA-256 of the event's canonical payload.
func PayloadHash(ev domain.LedgerEvent) string {
	return digest(encodeObject(payloadFields(ev)))
}

// LinkHash is the block hash over {index, payloadHash, prevHash}.
func LinkHash(index int, payloadHash, prevHash string) string {
	return digest(encodeObject(linkFields(index, payloadHash, prevHash)))
}
