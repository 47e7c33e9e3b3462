// Package signature signs outbound webhook bodies with HMAC-SHA256 and
// generates credentials.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Header names carrying the signature and its timestamp.
const (
	HeaderSignature = "X-Hookbridge-Signature"
	HeaderTimestamp = "X-Hookbridge-Timestamp"
)

// Sign returns "v1=<hex>" where hex is the HMAC-SHA256 of "{timestamp}.{payload}".
func Sign(payload []byte, secret string, timestamp int64) string {
	content := fmt.Sprintf("%d.%s", timestamp, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(content))
	return "v1=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether sig is the signature of payload at timestamp.
func Verify(payload []byte, secret string, timestamp int64, sig string) bool {
	expected := Sign(payload, secret, timestamp)
	return hmac.Equal([]byte(expected), []byte(sig))
}

// Headers returns the signature headers for payload signed at now.
func Headers(payload []byte, secret string, now time.Time) map[string]string {
	ts := now.Unix()
	return map[string]string{
		HeaderSignature: Sign(payload, secret, ts),
		HeaderTimestamp: strconv.FormatInt(ts, 10),
	}
}

// VerifyHeaders checks header values produced by Headers and rejects
// timestamps further than tolerance from now. A zero tolerance disables the
// age check.
func VerifyHeaders(payload []byte, secret, sigHeader, tsHeader string, tolerance time.Duration, now time.Time) bool {
	ts, err := strconv.ParseInt(tsHeader, 10, 64)
	if err != nil {
		return false
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age < 0 {
			age = -age
		}
		if age > tolerance {
			return false
		}
	}
	return Verify(payload, secret, ts, sigHeader)
}
