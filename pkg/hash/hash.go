package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"lukechampine.com/blake3"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// IteratedSHA256 applies SHA256 iteratively n times to produce a derived hash.
func IteratedSHA256(input string, iterations int) string {
	data := []byte(input)
	for range iterations {
		h := sha256.Sum256(data)
		data = h[:]
	}
	return hex.EncodeToString(data)
}

// HashIP hashes an IP address with a salt so request logs never carry raw addresses.
func HashIP(ip, salt string) string {
	return IteratedSHA256(salt+ip, 1000)[:16]
}

// OTPDigest binds a one-time code to the lower-cased email it was issued for.
// Only the digest is stored, never the code.
func OTPDigest(email, code string) string {
	return SHA256Hex(strings.ToLower(strings.TrimSpace(email)) + ":" + code)
}

// ObjectKey derives a storage key of the form "<prefix>/<blake3 hex><ext>"
// from the given seed parts. ext should include its leading dot or be empty.
func ObjectKey(prefix, ext string, seed ...string) string {
	sum := blake3.Sum256([]byte(strings.Join(seed, "\x00")))
	key := fmt.Sprintf("%x", sum[:16])
	if prefix != "" {
		key = strings.TrimSuffix(prefix, "/") + "/" + key
	}
	return key + strings.ToLower(ext)
}
