package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeMpesaNumber(t *testing.T) {
	t.Run("local format with leading zero", func(t *testing.T) {
		got, err := SanitizeMpesaNumber("0712345678")
		assert.NoError(t, err)
		assert.Equal(t, "254712345678", got)
	})

	t.Run("local format without leading zero", func(t *testing.T) {
		got, err := SanitizeMpesaNumber("712345678")
		assert.NoError(t, err)
		assert.Equal(t, "254712345678", got)
	})

	t.Run("already international", func(t *testing.T) {
		got, err := SanitizeMpesaNumber("254101234567")
		assert.NoError(t, err)
		assert.Equal(t, "254101234567", got)
	})

	t.Run("strips formatting characters", func(t *testing.T) {
		got, err := SanitizeMpesaNumber("+254 712-345-678")
		assert.NoError(t, err)
		assert.Equal(t, "254712345678", got)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := SanitizeMpesaNumber("12345")
		assert.Error(t, err)
	})
}
