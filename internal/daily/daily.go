// Package daily derives the shared board of the day and keeps its results.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic, non-zero gem seed for a date using
// HMAC(salt, YYYY-MM-DD). Everyone playing the same day gets the same board
// and the same refill sequence.
func Seed(date time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// drop the sign bit; zero is reserved for "time-based"
	n := int64(binary.BigEndian.Uint64(sum[:8]) >> 1)
	if n == 0 {
		n = 1
	}
	return n
}
