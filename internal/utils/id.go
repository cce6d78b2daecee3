package utils

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// GenerateSecureID returns prefix, the date of now and eight random hex
// digits, e.g. "PED-20261016-9F03A2C1".
func GenerateSecureID(prefix string, now time.Time) string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand only fails when the OS source is broken
		binary.BigEndian.PutUint32(b[:], uint32(now.UnixNano()))
	}
	return fmt.Sprintf("%s-%s-%08X", prefix, now.Format("20060102"), binary.BigEndian.Uint32(b[:]))
}
