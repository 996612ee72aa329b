package services

import (
	config "github.com/anjiri1684/fundipay/configs"
	"github.com/anjiri1684/fundipay/payments"
)

var settings config.Settings

// Queue is the process-wide payout queue. Wired once at boot.
var Queue *PayoutQueue

// Init wires the service layer. Must run after the database is connected
// and payments.Active is set.
func Init(s config.Settings) {
	settings = s
	Queue = NewPayoutQueue(payments.Active, &dbPayoutStore{}, s.PayoutMaxAttempts, s.PayoutJobDelay)
}
