package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSecureID(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^PED-20261016-[0-9A-F]{8}$`)

	seen := make(map[string]bool)
	for range 50 {
		id := GenerateSecureID("PED", now)
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	assert.Len(t, seen, 50)
}
