package services

import "errors"

// Sentinel errors the handlers map onto the coarse reason strings exposed
// at the API boundary. Internal detail never crosses that boundary.
var (
	ErrWorkerNotFound      = errors.New("worker not found")
	ErrDuplicateCode       = errors.New("offline code already reconciled")
	ErrFlagged             = errors.New("payment flagged by fraud check")
	ErrGatewayUnavailable  = errors.New("gateway unavailable")
	ErrReservationInFlight = errors.New("idempotency reservation still in flight")
	ErrReservationExpired  = errors.New("idempotency reservation expired without a response")
	ErrKeyBodyMismatch     = errors.New("idempotency key reused with a different body")
	ErrTransactionNotFound = errors.New("transaction not found")
)
