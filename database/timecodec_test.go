package database

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTimestamp_FixedWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "whole second",
			input:    time.Date(2024, 11, 22, 10, 30, 0, 0, time.UTC),
			expected: "2024-11-22T10:30:00.000000000Z",
		},
		{
			name:     "nanosecond precision",
			input:    time.Date(2024, 11, 22, 10, 30, 0, 123456789, time.UTC),
			expected: "2024-11-22T10:30:00.123456789Z",
		},
		{
			name:     "non-UTC input normalized",
			input:    time.Date(2024, 11, 22, 10, 30, 0, 0, time.FixedZone("CET", 3600)),
			expected: "2024-11-22T09:30:00.000000000Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, encodeTimestamp(tt.input))
		})
	}
}

func TestParseTimestamp_Roundtrip(t *testing.T) {
	input := time.Date(2024, 11, 22, 10, 30, 0, 123000000, time.UTC)

	parsed, err := parseTimestamp(encodeTimestamp(input))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(input))
}

func TestParseTimestamp_LegacyVariants(t *testing.T) {
	// Older rows may carry plain RFC3339 with varying precision.
	for _, input := range []string{
		"2019-03-01T08:15:00Z",
		"2019-03-01T08:15:00.5Z",
		"2019-03-01T09:15:00+01:00",
	} {
		_, err := parseTimestamp(input)
		assert.NoError(t, err, input)
	}
}

func TestEncodeTimestamp_SortsChronologically(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 900000000, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 50000000, time.UTC),
		time.Date(2023, 12, 31, 23, 59, 59, 999999999, time.UTC),
	}

	encoded := make([]string, len(times))
	for i, tm := range times {
		encoded[i] = encodeTimestamp(tm)
	}

	sort.Strings(encoded)
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	for i, tm := range times {
		assert.Equal(t, encodeTimestamp(tm), encoded[i])
	}
}

func TestEncodeDue(t *testing.T) {
	assert.Nil(t, encodeDue(nil))

	due := time.Date(2019, 12, 24, 0, 0, 0, 0, time.UTC)
	encoded := encodeDue(&due)
	require.NotNil(t, encoded)
	assert.Equal(t, "2019-12-24", *encoded)

	parsed, err := parseDue(*encoded)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(due))
}
