package services

import (
	"sync"
	"testing"

	"github.com/anjiri1684/fundipay/database"
	"github.com/anjiri1684/fundipay/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSplitAmount(t *testing.T) {
	t.Run("five percent of a round amount", func(t *testing.T) {
		payout, commission := splitAmount(100, 0.05)
		assert.Equal(t, 5.0, commission)
		assert.Equal(t, 95.0, payout)
	})

	t.Run("three percent rounds to cents", func(t *testing.T) {
		payout, commission := splitAmount(33.33, 0.03)
		assert.Equal(t, 1.0, commission)
		assert.Equal(t, 32.33, payout)
	})

	t.Run("large amount", func(t *testing.T) {
		payout, commission := splitAmount(20000, 0.05)
		assert.Equal(t, 1000.0, commission)
		assert.Equal(t, 19000.0, payout)
	})

	t.Run("zero rate passes everything through", func(t *testing.T) {
		payout, commission := splitAmount(250, 0)
		assert.Zero(t, commission)
		assert.Equal(t, 250.0, payout)
	})

	t.Run("split always sums back to the amount", func(t *testing.T) {
		for _, amount := range []float64{1, 49.99, 100, 333.33, 1250.50, 99999} {
			payout, commission := splitAmount(amount, 0.05)
			assert.InDelta(t, amount, payout+commission, 1e-9, "amount %v", amount)
		}
	})
}

func TestReferralCreditSingleUse(t *testing.T) {
	newTestDB(t)
	worker := seedWorker(t, "254700000020")
	require.NoError(t, database.DB.Model(&models.Worker{}).
		Where("id = ?", worker.ID).
		UpdateColumn("referral_credits", 1).Error)

	// First payment spends the credit, the second pays commission.
	var payouts, commissions []float64
	var waived []bool
	for i := 0; i < 2; i++ {
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			payout, commission, used, err := CalculateCommission(tx, worker.ID, 200)
			if err != nil {
				return err
			}
			payouts = append(payouts, payout)
			commissions = append(commissions, commission)
			waived = append(waived, used)
			return nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, []bool{true, false}, waived)
	assert.Equal(t, []float64{200, 190}, payouts)
	assert.Equal(t, []float64{0, 10}, commissions)

	var got models.Worker
	require.NoError(t, database.DB.First(&got, "id = ?", worker.ID).Error)
	assert.Zero(t, got.ReferralCredits)
}

func TestReferralCreditNeverDoubleSpent(t *testing.T) {
	newTestDB(t)
	worker := seedWorker(t, "254700000021")
	require.NoError(t, database.DB.Model(&models.Worker{}).
		Where("id = ?", worker.ID).
		UpdateColumn("referral_credits", 1).Error)

	const payers = 4
	results := make(chan bool, payers)
	var wg sync.WaitGroup
	for i := 0; i < payers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := database.DB.Transaction(func(tx *gorm.DB) error {
				_, _, used, err := CalculateCommission(tx, worker.ID, 100)
				if err != nil {
					return err
				}
				results <- used
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	close(results)

	waivers := 0
	for used := range results {
		if used {
			waivers++
		}
	}
	assert.Equal(t, 1, waivers)

	var got models.Worker
	require.NoError(t, database.DB.First(&got, "id = ?", worker.ID).Error)
	assert.Zero(t, got.ReferralCredits)
}
