package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/fundipay/payments"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu         sync.Mutex
	failures   map[string]int
	disbursals []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failures: make(map[string]int)}
}

// failTimes makes the next n disbursements for reference fail.
func (g *fakeGateway) failTimes(reference string, n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[reference] = n
}

func (g *fakeGateway) STKPush(phone string, amount float64, reference string) (*payments.PushResult, error) {
	return nil, errors.New("not used in payout tests")
}

func (g *fakeGateway) Disburse(phone string, amount float64, reference string) (*payments.DisburseResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failures[reference] > 0 {
		g.failures[reference]--
		return nil, errors.New("gateway declined disbursement")
	}
	g.disbursals = append(g.disbursals, reference)
	return &payments.DisburseResult{DisbursementID: "DISB-" + reference}, nil
}

func (g *fakeGateway) disbursed() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.disbursals))
	copy(out, g.disbursals)
	return out
}

type attemptRecord struct {
	transactionID uuid.UUID
	number        int
	status        string
	reason        string
}

type fakeStore struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]*attemptRecord
	order    []uuid.UUID
	outcomes map[uuid.UUID]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		attempts: make(map[uuid.UUID]*attemptRecord),
		outcomes: make(map[uuid.UUID]bool),
	}
}

func (s *fakeStore) WorkerPhone(workerID uuid.UUID) (string, error) {
	return "254712345678", nil
}

func (s *fakeStore) RecordAttempt(job PayoutJob, attemptNumber int) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.attempts[id] = &attemptRecord{transactionID: job.TransactionID, number: attemptNumber, status: "pending"}
	s.order = append(s.order, id)
	return id, nil
}

func (s *fakeStore) MarkAttemptSuccess(attemptID uuid.UUID, disbursementID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attemptID].status = "success"
	return nil
}

func (s *fakeStore) MarkAttemptFailed(attemptID uuid.UUID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attemptID].status = "failed"
	s.attempts[attemptID].reason = reason
	return nil
}

func (s *fakeStore) MarkPayoutOutcome(transactionID uuid.UUID, ok bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[transactionID] = ok
	return nil
}

func (s *fakeStore) outcome(transactionID uuid.UUID) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, present := s.outcomes[transactionID]
	return ok, present
}

func (s *fakeStore) attemptCount(transactionID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.attempts {
		if a.transactionID == transactionID {
			n++
		}
	}
	return n
}

func (s *fakeStore) attemptStatuses(transactionID uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, id := range s.order {
		if s.attempts[id].transactionID == transactionID {
			out = append(out, s.attempts[id].status)
		}
	}
	return out
}

func TestPayoutQueueSuccessFirstAttempt(t *testing.T) {
	gw := newFakeGateway()
	store := newFakeStore()
	q := NewPayoutQueue(gw, store, 3, time.Millisecond)

	txID := uuid.New()
	q.Enqueue(txID, uuid.New(), 95)

	require.Eventually(t, func() bool {
		_, present := store.outcome(txID)
		return present
	}, time.Second, 5*time.Millisecond)

	ok, _ := store.outcome(txID)
	assert.True(t, ok)
	assert.Equal(t, 1, store.attemptCount(txID))
	assert.Equal(t, []string{"success"}, store.attemptStatuses(txID))
}

func TestPayoutQueueRetriesThenSucceeds(t *testing.T) {
	gw := newFakeGateway()
	store := newFakeStore()
	q := NewPayoutQueue(gw, store, 3, time.Millisecond)

	txID := uuid.New()
	gw.failTimes(txID.String(), 2)
	q.Enqueue(txID, uuid.New(), 95)

	require.Eventually(t, func() bool {
		_, present := store.outcome(txID)
		return present
	}, time.Second, 5*time.Millisecond)

	ok, _ := store.outcome(txID)
	assert.True(t, ok)
	assert.Equal(t, 3, store.attemptCount(txID))
	assert.Equal(t, []string{"failed", "failed", "success"}, store.attemptStatuses(txID))
}

func TestPayoutQueueExhaustsRetries(t *testing.T) {
	gw := newFakeGateway()
	store := newFakeStore()
	q := NewPayoutQueue(gw, store, 3, time.Millisecond)

	txID := uuid.New()
	gw.failTimes(txID.String(), 100)
	q.Enqueue(txID, uuid.New(), 95)

	require.Eventually(t, func() bool {
		_, present := store.outcome(txID)
		return present
	}, time.Second, 5*time.Millisecond)

	ok, _ := store.outcome(txID)
	assert.False(t, ok)
	assert.Equal(t, 3, store.attemptCount(txID))

	// Let the drain loop wind down and confirm there is no fourth try.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, store.attemptCount(txID))
	assert.Zero(t, q.Len())
}

func TestPayoutQueueProcessesInOrder(t *testing.T) {
	gw := newFakeGateway()
	store := newFakeStore()
	q := NewPayoutQueue(gw, store, 3, time.Millisecond)

	first, second, third := uuid.New(), uuid.New(), uuid.New()
	worker := uuid.New()
	q.Enqueue(first, worker, 10)
	q.Enqueue(second, worker, 20)
	q.Enqueue(third, worker, 30)

	require.Eventually(t, func() bool {
		return len(gw.disbursed()) == 3
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{first.String(), second.String(), third.String()}, gw.disbursed())
}

func TestPayoutQueueFailingJobDoesNotBlockOthers(t *testing.T) {
	gw := newFakeGateway()
	store := newFakeStore()
	q := NewPayoutQueue(gw, store, 3, time.Millisecond)

	stuck, healthy := uuid.New(), uuid.New()
	gw.failTimes(stuck.String(), 3)
	q.Enqueue(stuck, uuid.New(), 10)
	q.Enqueue(healthy, uuid.New(), 20)

	require.Eventually(t, func() bool {
		_, stuckDone := store.outcome(stuck)
		_, healthyDone := store.outcome(healthy)
		return stuckDone && healthyDone
	}, time.Second, 5*time.Millisecond)

	stuckOK, _ := store.outcome(stuck)
	healthyOK, _ := store.outcome(healthy)
	assert.False(t, stuckOK)
	assert.True(t, healthyOK)
}
