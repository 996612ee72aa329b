package services

import (
	"testing"
	"time"

	config "github.com/anjiri1684/fundipay/configs"
	"github.com/stretchr/testify/assert"
)

func testSettings() config.Settings {
	return config.Settings{
		CommissionRate:       0.05,
		HighAmountThreshold:  10000,
		HighAmountWeight:     0.3,
		HourlyTxLimit:        5,
		HourlyTxWeight:       0.4,
		VelocityTxLimit:      3,
		VelocityTxWeight:     0.3,
		PatternWeight:        0.5,
		RepeatPairLimit:      3,
		RepeatPairSubScore:   0.3,
		RoundAmountThreshold: 1000,
		RoundAmountSubScore:  0.2,
		OddHoursSubScore:     0.1,
		OddHoursStart:        2,
		OddHoursEnd:          5,
		FlagThreshold:        0.7,
	}
}

// Afternoon timestamp so the odd-hours rule stays quiet unless a test
// wants it.
var quietHour = time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)

func TestScoreSignals(t *testing.T) {
	cfg := testSettings()

	t.Run("clean request scores zero", func(t *testing.T) {
		result := ScoreSignals(FraudSignals{Amount: 350, RequestedAt: quietHour}, cfg)
		assert.False(t, result.Flagged)
		assert.Zero(t, result.Score)
		assert.Empty(t, result.Reasons)
	})

	t.Run("high amount alone", func(t *testing.T) {
		result := ScoreSignals(FraudSignals{Amount: 15500, RequestedAt: quietHour}, cfg)
		assert.False(t, result.Flagged)
		assert.InDelta(t, 0.3, result.Score, 1e-9)
		assert.Len(t, result.Reasons, 1)
	})

	t.Run("threshold is strict", func(t *testing.T) {
		// High non-round amount plus the hourly rule lands exactly on
		// the threshold; flagging requires strictly more.
		result := ScoreSignals(FraudSignals{Amount: 15500, TxLastHour: 5, RequestedAt: quietHour}, cfg)
		assert.InDelta(t, 0.7, result.Score, 1e-9)
		assert.False(t, result.Flagged)
	})

	t.Run("high round amount with busy hour flags", func(t *testing.T) {
		// The end-to-end rejection case: 20000 from a customer with 5
		// transactions in the last hour.
		result := ScoreSignals(FraudSignals{Amount: 20000, TxLastHour: 5, RequestedAt: quietHour}, cfg)
		assert.True(t, result.Flagged)
		assert.GreaterOrEqual(t, result.Score, 0.7)
	})

	t.Run("odd hours contributes through pattern weight", func(t *testing.T) {
		at3am := time.Date(2025, 6, 10, 3, 15, 0, 0, time.UTC)
		result := ScoreSignals(FraudSignals{Amount: 350, RequestedAt: at3am}, cfg)
		assert.InDelta(t, 0.05, result.Score, 1e-9)
	})

	t.Run("everything at once clamps to one", func(t *testing.T) {
		result := ScoreSignals(FraudSignals{
			Amount:      50000,
			TxLastHour:  9,
			TxLast5Min:  4,
			PairLast24h: 6,
			RequestedAt: time.Date(2025, 6, 10, 4, 0, 0, 0, time.UTC),
		}, cfg)
		assert.True(t, result.Flagged)
		assert.Equal(t, 1.0, result.Score)
	})

	t.Run("blacklist overrides everything", func(t *testing.T) {
		result := ScoreSignals(FraudSignals{Amount: 1, Blacklisted: true, RequestedAt: quietHour}, cfg)
		assert.True(t, result.Flagged)
		assert.Equal(t, 1.0, result.Score)
		assert.Equal(t, []string{"customer number is blacklisted"}, result.Reasons)
	})
}

func TestScoreSignalsMonotonic(t *testing.T) {
	cfg := testSettings()

	// Each step adds one more trigger on top of the previous signals;
	// the score must never decrease.
	steps := []FraudSignals{
		{Amount: 350, RequestedAt: quietHour},
		{Amount: 15500, RequestedAt: quietHour},
		{Amount: 15500, TxLastHour: 5, RequestedAt: quietHour},
		{Amount: 15500, TxLastHour: 5, TxLast5Min: 3, RequestedAt: quietHour},
		{Amount: 15500, TxLastHour: 5, TxLast5Min: 3, PairLast24h: 4, RequestedAt: quietHour},
		{Amount: 20000, TxLastHour: 5, TxLast5Min: 3, PairLast24h: 4, RequestedAt: quietHour},
	}

	prev := -1.0
	for i, signals := range steps {
		score := ScoreSignals(signals, cfg).Score
		assert.GreaterOrEqual(t, score, prev, "step %d decreased the score", i)
		prev = score
	}
}
