package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// newID builds a record id of the form {prefix}_{unixNano}_{12 hex}.
// The hex suffix carries 48 random bits so two appends in the same
// nanosecond still diverge. When crypto/rand is unavailable the
// timestamp alone has to do.
func newID(prefix string) string {
	now := time.Now().UnixNano()

	var suffix [6]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return fmt.Sprintf("%s_%d", prefix, now)
	}
	return fmt.Sprintf("%s_%d_%s", prefix, now, hex.EncodeToString(suffix[:]))
}
