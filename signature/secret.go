package signature

import (
	"crypto/rand"
	"encoding/hex"
)

// Credential prefixes.
const (
	SecretPrefix = "whsec_"
	APIKeyPrefix = "hbk_"
)

// GenerateSecret creates a signing secret: "whsec_" + 32 random bytes as hex.
func GenerateSecret() string {
	return SecretPrefix + randomHex(32)
}

// GenerateAPIKey creates an inbound API key: "hbk_" + 24 random bytes as hex.
func GenerateAPIKey() string {
	return APIKeyPrefix + randomHex(24)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("hookbridge: failed to generate random bytes: " + err.Error())
	}
	return hex.EncodeToString(b)
}
