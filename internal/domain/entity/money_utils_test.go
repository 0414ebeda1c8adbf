package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
)

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		wantErr  error
	}{
		{"300", "300", nil},
		{" 10.5 ", "10.5", nil},
		{"0.0001", "0.0001", nil},
		{"1.50000", "1.5", nil},
		{"0", "", errs.ErrInvalidAmount},
		{"-3", "", errs.ErrInvalidAmount},
		{"", "", errs.ErrInvalidAmount},
		{"abc", "", errs.ErrInvalidAmount},
		{"1.00001", "", errs.ErrInvalidAmount},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			d, err := ParseAmount(tc.input)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, d.String())
		})
	}
}

func TestParseRate(t *testing.T) {
	d, err := ParseRate("1.2")
	assert.NoError(t, err)
	assert.Equal(t, "1.2", FormatTokens(d))

	_, err = ParseRate("0")
	assert.ErrorIs(t, err, errs.ErrInvalidRate)
	_, err = ParseRate("x")
	assert.ErrorIs(t, err, errs.ErrInvalidRate)
}
