package utils

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
)

var qrKeySanitizer = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateQrKey builds the bearer-capability key for a staff member's
// public tipping page: a readable slug of the display name plus 8 random
// bytes so the key stays unguessable. Uniqueness is still enforced by the
// database; callers translate a collision into a conflict error.
func GenerateQrKey(displayName string) (string, error) {
	slug := qrKeySanitizer.ReplaceAllString(strings.ToLower(strings.TrimSpace(displayName)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "staff"
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", err
	}

	return slug + "-" + hex.EncodeToString(randBytes), nil
}
