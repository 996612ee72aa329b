package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"PENDING":   TxStatusPending,
		"Pending":   TxStatusPending,
		"pending":   TxStatusPending,
		"COMPLETED": TxStatusCompleted,
		"succeeded": TxStatusCompleted,
		"SUCCESS":   TxStatusCompleted,
		"Failed":    TxStatusFailed,
		"failed":    TxStatusFailed,
	}

	for input, want := range cases {
		assert.Equal(t, want, NormalizeStatus(input), "input %q", input)
	}

	// Unknown values pass through untouched for the caller to reject.
	assert.Equal(t, "reversed", NormalizeStatus("reversed"))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(TxStatusPending))
	assert.True(t, IsTerminal(TxStatusCompleted))
	assert.True(t, IsTerminal(TxStatusFailed))
	assert.False(t, IsTerminal("reversed"))
}
