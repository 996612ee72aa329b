package payments

// PushResult is what a successfully accepted STK push returns. The
// CheckoutRequestID is the correlation id later callbacks carry; Raw is
// the gateway's response payload verbatim, persisted with the transaction
// so the metadata-scan fallback has something to match against.
type PushResult struct {
	MerchantRequestID string
	CheckoutRequestID string
	CustomerMessage   string
	Raw               string
}

type DisburseResult struct {
	DisbursementID string
}

// Gateway is the mobile-money collaborator: customer-leg push and
// worker-leg disbursement. Both are blocking HTTP calls; callers must not
// hold locks across them.
type Gateway interface {
	STKPush(phone string, amount float64, reference string) (*PushResult, error)
	Disburse(phone string, amount float64, reference string) (*DisburseResult, error)
}

// Active is the gateway the handlers and the payout queue use. main wires
// the real Buni client here; tests swap in fakes.
var Active Gateway
