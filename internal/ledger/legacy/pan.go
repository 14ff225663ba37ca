package legacy

import (
	"encoding/hex"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

var ErrInvalidPAN = errors.New("invalid PAN format")

var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

// HashPAN returns the 0x-prefixed Keccak-256 of the normalised PAN. The raw
// PAN never leaves this function.
func HashPAN(pan string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(pan))
	if !panPattern.MatchString(normalized) {
		return "", ErrInvalidPAN
	}
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(normalized))
	return "0x" + hex.EncodeToString(h.Sum(nil)), nil
}
