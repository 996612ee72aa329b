package services

import (
	"log"
	"sync"
	"time"

	"github.com/anjiri1684/fundipay/payments"
	"github.com/google/uuid"
)

// PayoutJob is one pending worker disbursement. Jobs live only in memory;
// every attempt is journaled to payout_attempts so a crash loses at most
// the queue position, never the audit trail.
type PayoutJob struct {
	TransactionID uuid.UUID
	WorkerID      uuid.UUID
	Amount        float64
	Attempts      int
}

// PayoutStore is the slice of persistence the queue needs. The ledger owns
// the Transaction record; the queue only ever touches it through
// MarkPayoutOutcome.
type PayoutStore interface {
	WorkerPhone(workerID uuid.UUID) (string, error)
	RecordAttempt(job PayoutJob, attemptNumber int) (uuid.UUID, error)
	MarkAttemptSuccess(attemptID uuid.UUID, disbursementID string) error
	MarkAttemptFailed(attemptID uuid.UUID, reason string) error
	MarkPayoutOutcome(transactionID uuid.UUID, ok bool) error
}

// PayoutQueue drains worker disbursements strictly in enqueue order. At
// most one drain loop runs at a time; Enqueue starts one if the queue is
// idle. Failed jobs are re-enqueued at the tail so one failing payout
// never blocks the rest.
type PayoutQueue struct {
	mu           sync.Mutex
	jobs         []PayoutJob
	isProcessing bool

	gateway     payments.Gateway
	store       PayoutStore
	maxAttempts int
	jobDelay    time.Duration
}

func NewPayoutQueue(gateway payments.Gateway, store PayoutStore, maxAttempts int, jobDelay time.Duration) *PayoutQueue {
	return &PayoutQueue{
		gateway:     gateway,
		store:       store,
		maxAttempts: maxAttempts,
		jobDelay:    jobDelay,
	}
}

func (q *PayoutQueue) Enqueue(transactionID, workerID uuid.UUID, amount float64) {
	q.mu.Lock()
	q.jobs = append(q.jobs, PayoutJob{
		TransactionID: transactionID,
		WorkerID:      workerID,
		Amount:        amount,
	})
	shouldDrain := !q.isProcessing
	if shouldDrain {
		q.isProcessing = true
	}
	q.mu.Unlock()

	if shouldDrain {
		go q.drain()
	}
}

// Len reports the number of queued jobs. Used by the health endpoint.
func (q *PayoutQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *PayoutQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.jobs) == 0 {
			q.isProcessing = false
			q.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		q.mu.Unlock()

		q.process(job)

		// Fixed pacing between outbound disbursement calls. Fine at
		// current volume; a real backoff curve is a known scaling gap.
		time.Sleep(q.jobDelay)
	}
}

func (q *PayoutQueue) process(job PayoutJob) {
	attemptNumber := job.Attempts + 1

	attemptID, err := q.store.RecordAttempt(job, attemptNumber)
	if err != nil {
		log.Printf("🔥 Failed to record payout attempt for transaction %s: %v", job.TransactionID, err)
	}

	phone, err := q.store.WorkerPhone(job.WorkerID)
	if err != nil {
		q.fail(job, attemptID, "worker lookup failed: "+err.Error())
		return
	}

	// Blocking gateway call; no queue lock is held here.
	result, err := q.gateway.Disburse(phone, job.Amount, job.TransactionID.String())
	if err != nil {
		q.fail(job, attemptID, err.Error())
		return
	}

	if err := q.store.MarkAttemptSuccess(attemptID, result.DisbursementID); err != nil {
		log.Printf("🔥 Failed to mark payout attempt %s as success: %v", attemptID, err)
	}
	if err := q.store.MarkPayoutOutcome(job.TransactionID, true); err != nil {
		log.Printf("🔥 Failed to mark payout outcome for transaction %s: %v", job.TransactionID, err)
	}
	log.Printf("✅ Payout of %.2f for transaction %s succeeded on attempt %d", job.Amount, job.TransactionID, attemptNumber)
}

func (q *PayoutQueue) fail(job PayoutJob, attemptID uuid.UUID, reason string) {
	if err := q.store.MarkAttemptFailed(attemptID, reason); err != nil {
		log.Printf("🔥 Failed to mark payout attempt %s as failed: %v", attemptID, err)
	}

	job.Attempts++
	if job.Attempts < q.maxAttempts {
		log.Printf("⚠️ Payout for transaction %s failed (attempt %d/%d), re-queuing: %s", job.TransactionID, job.Attempts, q.maxAttempts, reason)
		q.mu.Lock()
		q.jobs = append(q.jobs, job)
		q.mu.Unlock()
		return
	}

	if err := q.store.MarkPayoutOutcome(job.TransactionID, false); err != nil {
		log.Printf("🔥 Failed to mark payout outcome for transaction %s: %v", job.TransactionID, err)
	}
}
