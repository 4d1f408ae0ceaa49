package sequence_test

import (
	"testing"

	"github.com/paveg/clump/internal/errors"
	"github.com/paveg/clump/internal/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundDatetime(t *testing.T) {
	const in = "2021-06-17 14:35:21.123456"

	tests := []struct {
		frequency string
		expected  string
	}{
		{"second", "2021-06-17 14:35:21.000000"},
		{"minute", "2021-06-17 14:35:00.000000"},
		{"hour", "2021-06-17 14:00:00.000000"},
		{"day", "2021-06-17 00:00:00.000000"},
		{"month", "2021-06-01 00:00:00.000000"},
	}

	for _, tt := range tests {
		t.Run(tt.frequency, func(t *testing.T) {
			got, err := sequence.RoundDatetime(in, tt.frequency, "")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRoundDatetime_CustomLayout(t *testing.T) {
	got, err := sequence.RoundDatetime("17/06/2021 14:35", "hour", "02/01/2006 15:04")
	require.NoError(t, err)
	assert.Equal(t, "17/06/2021 14:00", got)
}

func TestRoundDatetime_Errors(t *testing.T) {
	_, err := sequence.RoundDatetime("2021-06-17 14:35:21.123456", "week", "")
	assert.ErrorIs(t, err, errors.ErrArgument)

	_, err = sequence.RoundDatetime("yesterday", "day", "")
	assert.ErrorIs(t, err, errors.ErrArgument)
}
