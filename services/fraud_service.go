package services

import (
	"log"
	"math"
	"strings"
	"time"

	config "github.com/anjiri1684/fundipay/configs"
	"github.com/anjiri1684/fundipay/database"
	"github.com/anjiri1684/fundipay/models"
	"github.com/google/uuid"
)

// FraudSignals are the raw inputs to the scoring rules, gathered from the
// ledger before scoring so the rule math itself stays pure.
type FraudSignals struct {
	Amount      float64
	TxLastHour  int64
	TxLast5Min  int64
	PairLast24h int64
	Blacklisted bool
	RequestedAt time.Time
}

type FraudResult struct {
	Flagged bool
	Score   float64
	Reasons []string
}

// ScoreSignals combines independent rule signals into a weighted sum.
// Blacklist membership overrides everything with an exact 1.0.
func ScoreSignals(s FraudSignals, cfg config.Settings) FraudResult {
	if s.Blacklisted {
		return FraudResult{
			Flagged: true,
			Score:   1.0,
			Reasons: []string{"customer number is blacklisted"},
		}
	}

	var score float64
	var reasons []string

	if s.Amount > cfg.HighAmountThreshold {
		score += cfg.HighAmountWeight
		reasons = append(reasons, "amount above high-value threshold")
	}

	if s.TxLastHour >= int64(cfg.HourlyTxLimit) {
		score += cfg.HourlyTxWeight
		reasons = append(reasons, "too many transactions from customer in the last hour")
	}

	if s.TxLast5Min >= int64(cfg.VelocityTxLimit) {
		score += cfg.VelocityTxWeight
		reasons = append(reasons, "transaction velocity spike in the last 5 minutes")
	}

	var pattern float64
	if s.PairLast24h > int64(cfg.RepeatPairLimit) {
		pattern += cfg.RepeatPairSubScore
		reasons = append(reasons, "repeated customer-to-worker payments in 24h")
	}
	if s.Amount >= cfg.RoundAmountThreshold && math.Mod(s.Amount, 1000) == 0 {
		pattern += cfg.RoundAmountSubScore
		reasons = append(reasons, "large round-number amount")
	}
	hour := s.RequestedAt.Hour()
	if hour >= cfg.OddHoursStart && hour < cfg.OddHoursEnd {
		pattern += cfg.OddHoursSubScore
		reasons = append(reasons, "requested during odd hours")
	}
	score += cfg.PatternWeight * pattern

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}

	return FraudResult{
		Flagged: score > cfg.FlagThreshold,
		Score:   score,
		Reasons: reasons,
	}
}

// CheckPayment gathers history for the customer number, scores the request
// and persists the check for audit. An infrastructure failure during the
// history lookup fails open: a legitimate payment is never blocked on a
// hiccup, the anomaly is only logged.
func CheckPayment(workerID uuid.UUID, customerPhone string, amount float64) FraudResult {
	signals, err := gatherSignals(workerID, customerPhone, amount)

	var result FraudResult
	if err != nil {
		log.Printf("🔥 Fraud history lookup failed for %s, failing open: %v", customerPhone, err)
		result = FraudResult{Flagged: false, Score: 0, Reasons: []string{"history lookup failed, failed open"}}
	} else {
		result = ScoreSignals(signals, settings)
	}

	check := models.FraudCheck{
		WorkerID:      workerID,
		CustomerPhone: customerPhone,
		Amount:        amount,
		Score:         result.Score,
		Flagged:       result.Flagged,
		Reasons:       strings.Join(result.Reasons, "; "),
	}
	if err := database.DB.Create(&check).Error; err != nil {
		log.Printf("🔥 Failed to persist fraud check for %s: %v", customerPhone, err)
	}

	return result
}

func gatherSignals(workerID uuid.UUID, customerPhone string, amount float64) (FraudSignals, error) {
	now := time.Now()
	signals := FraudSignals{Amount: amount, RequestedAt: now}

	var blacklisted int64
	if err := database.DB.Model(&models.BlacklistEntry{}).
		Where("phone = ?", customerPhone).Count(&blacklisted).Error; err != nil {
		return signals, err
	}
	signals.Blacklisted = blacklisted > 0

	if err := database.DB.Model(&models.Transaction{}).
		Where("customer_phone = ? AND created_at > ?", customerPhone, now.Add(-time.Hour)).
		Count(&signals.TxLastHour).Error; err != nil {
		return signals, err
	}

	if err := database.DB.Model(&models.Transaction{}).
		Where("customer_phone = ? AND created_at > ?", customerPhone, now.Add(-5*time.Minute)).
		Count(&signals.TxLast5Min).Error; err != nil {
		return signals, err
	}

	if err := database.DB.Model(&models.Transaction{}).
		Where("customer_phone = ? AND worker_id = ? AND created_at > ?", customerPhone, workerID, now.Add(-24*time.Hour)).
		Count(&signals.PairLast24h).Error; err != nil {
		return signals, err
	}

	return signals, nil
}
