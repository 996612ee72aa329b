package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func Config(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return os.Getenv(key)
}

// Settings carries every tunable the payment engine uses. Fraud weights and
// thresholds deliberately live here, not as literals next to the rules, so
// they can be retuned without a code change.
type Settings struct {
	// NOTE: legacy call sites disagreed between 3% and 5%; 0.05 is the
	// default pending product confirmation.
	CommissionRate float64

	HighAmountThreshold  float64
	HighAmountWeight     float64
	HourlyTxLimit        int
	HourlyTxWeight       float64
	VelocityTxLimit      int
	VelocityTxWeight     float64
	PatternWeight        float64
	RepeatPairLimit      int
	RepeatPairSubScore   float64
	RoundAmountThreshold float64
	RoundAmountSubScore  float64
	OddHoursSubScore     float64
	OddHoursStart        int
	OddHoursEnd          int
	FlagThreshold        float64

	PayoutMaxAttempts int
	PayoutJobDelay    time.Duration

	BatchItemDelay time.Duration
}

func floatEnv(key string, fallback float64) float64 {
	raw := Config(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("⚠️ Invalid value for %s (%q), using default %v", key, raw, fallback)
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	raw := Config(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️ Invalid value for %s (%q), using default %v", key, raw, fallback)
		return fallback
	}
	return v
}

func LoadSettings() Settings {
	return Settings{
		CommissionRate: floatEnv("COMMISSION_RATE", 0.05),

		HighAmountThreshold:  floatEnv("FRAUD_HIGH_AMOUNT_THRESHOLD", 10000),
		HighAmountWeight:     floatEnv("FRAUD_HIGH_AMOUNT_WEIGHT", 0.3),
		HourlyTxLimit:        intEnv("FRAUD_HOURLY_TX_LIMIT", 5),
		HourlyTxWeight:       floatEnv("FRAUD_HOURLY_TX_WEIGHT", 0.4),
		VelocityTxLimit:      intEnv("FRAUD_VELOCITY_TX_LIMIT", 3),
		VelocityTxWeight:     floatEnv("FRAUD_VELOCITY_TX_WEIGHT", 0.3),
		PatternWeight:        floatEnv("FRAUD_PATTERN_WEIGHT", 0.5),
		RepeatPairLimit:      intEnv("FRAUD_REPEAT_PAIR_LIMIT", 3),
		RepeatPairSubScore:   floatEnv("FRAUD_REPEAT_PAIR_SUBSCORE", 0.3),
		RoundAmountThreshold: floatEnv("FRAUD_ROUND_AMOUNT_THRESHOLD", 1000),
		RoundAmountSubScore:  floatEnv("FRAUD_ROUND_AMOUNT_SUBSCORE", 0.2),
		OddHoursSubScore:     floatEnv("FRAUD_ODD_HOURS_SUBSCORE", 0.1),
		OddHoursStart:        intEnv("FRAUD_ODD_HOURS_START", 2),
		OddHoursEnd:          intEnv("FRAUD_ODD_HOURS_END", 5),
		FlagThreshold:        floatEnv("FRAUD_FLAG_THRESHOLD", 0.7),

		PayoutMaxAttempts: intEnv("PAYOUT_MAX_ATTEMPTS", 3),
		PayoutJobDelay:    time.Duration(intEnv("PAYOUT_JOB_DELAY_MS", 500)) * time.Millisecond,

		BatchItemDelay: time.Duration(intEnv("RECONCILE_BATCH_DELAY_MS", 200)) * time.Millisecond,
	}
}
