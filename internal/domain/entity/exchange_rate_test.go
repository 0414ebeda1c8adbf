package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/tts-ledger/mocks/port/core"
)

func TestExchangeRate(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t).Frozen(created)

	rate, err := NewExchangeRate(DefaultExchangeRate, mockTime)
	require.NoError(t, err)
	assert.Equal(t, "1.2", rate.Rate.String())
	assert.Equal(t, created, rate.LastUpdate)

	t.Run("Convert multiplies by the rate", func(t *testing.T) {
		assert.Equal(t, "360", rate.Convert(decimal.NewFromInt(300)).String())
		assert.Equal(t, "120", rate.Convert(decimal.NewFromInt(100)).String())
	})

	t.Run("Convert rounds to the stored precision", func(t *testing.T) {
		r, err := NewExchangeRate(decimal.RequireFromString("1.234"), mockTime)
		require.NoError(t, err)

		assert.Equal(t, "13.0249", r.Convert(decimal.RequireFromString("10.555")).String())
		assert.Equal(t, "0.0001", r.Convert(decimal.RequireFromString("0.0001")).String())

		tiny, err := NewExchangeRate(decimal.RequireFromString("0.0001"), mockTime)
		require.NoError(t, err)
		assert.True(t, tiny.Convert(decimal.RequireFromString("0.0001")).IsZero())
	})

	t.Run("Update returns the previous rate", func(t *testing.T) {
		r, err := NewExchangeRate(DefaultExchangeRate, mockTime)
		require.NoError(t, err)

		previous, err := r.Update(decimal.NewFromInt(2), mockTime)
		require.NoError(t, err)
		assert.Equal(t, "1.2", previous.String())
		assert.Equal(t, "2", r.Rate.String())
	})

	t.Run("Non positive rates are rejected", func(t *testing.T) {
		_, err := NewExchangeRate(decimal.Zero, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidRate)

		r, err := NewExchangeRate(DefaultExchangeRate, mockTime)
		require.NoError(t, err)
		_, err = r.Update(decimal.NewFromInt(-1), mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidRate)
		assert.Equal(t, "1.2", r.Rate.String())
	})
}
