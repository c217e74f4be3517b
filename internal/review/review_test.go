package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_Deterministic(t *testing.T) {
	t.Parallel()

	a := Fingerprint("com.example.app", "Great loan experience", "2025-07-15 10:30:00")
	b := Fingerprint("com.example.app", "Great loan experience", "2025-07-15 10:30:00")

	assert.Equal(t, a, b, "same triple must always produce the same digest")
	assert.Len(t, a, 40, "SHA-1 hex digest is 40 characters")
}

func TestFingerprint_DistinctInputs(t *testing.T) {
	t.Parallel()

	base := Fingerprint("com.example.app", "Great loan experience", "2025-07-15 10:30:00")

	tests := []struct {
		name  string
		appID string
		text  string
		ts    string
	}{
		{"different_app", "com.other.app", "Great loan experience", "2025-07-15 10:30:00"},
		{"different_text", "com.example.app", "Terrible loan experience", "2025-07-15 10:30:00"},
		{"different_timestamp", "com.example.app", "Great loan experience", "2025-07-15 10:30:01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.NotEqual(t, base, Fingerprint(tt.appID, tt.text, tt.ts))
		})
	}
}

func TestFingerprint_TrimsText(t *testing.T) {
	t.Parallel()

	trimmed := Fingerprint("com.example.app", "Great app", "2025-07-15 10:30:00")
	padded := Fingerprint("com.example.app", "  Great app \n", "2025-07-15 10:30:00")

	assert.Equal(t, trimmed, padded, "leading/trailing whitespace must not change the digest")
}

func TestFingerprint_KnownDigest(t *testing.T) {
	t.Parallel()

	// Pinned digest of "app|text|2025-07-01 00:00:00"; guards the exact hash
	// input composition that stored identifiers were generated with.
	got := Fingerprint("app", "text", "2025-07-01 00:00:00")
	assert.Equal(t, "a9f932713f3dcc5709fdea06fe0df3588fb0d781", got)
}

func TestCivilTimestamp(t *testing.T) {
	t.Parallel()

	// 2025-07-15 05:00:00 UTC is 10:30:00 IST.
	utc := time.Date(2025, 7, 15, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-07-15 10:30:00", CivilTimestamp(utc))
}

func TestRecord_Row(t *testing.T) {
	t.Parallel()

	reviewed := time.Date(2025, 7, 15, 5, 0, 0, 0, time.UTC)
	ingested := time.Date(2025, 7, 16, 2, 30, 0, 0, time.UTC)

	r := Record{
		ID:         "abc123",
		AppName:    "MoneyView",
		ReviewedAt: reviewed,
		Rating:     4,
		IngestedAt: ingested,
		Text:       "Quick disbursal and easy interface",
	}

	row := r.Row()
	require.Len(t, row, 6)
	assert.Equal(t, "abc123", row[0])
	assert.Equal(t, "MoneyView", row[1])
	assert.Equal(t, "2025-07-15 10:30:00", row[2])
	assert.Equal(t, 4, row[3])
	assert.Equal(t, "2025-07-16 08:00:00", row[4])
	assert.Equal(t, "Quick disbursal and easy interface", row[5])
}
