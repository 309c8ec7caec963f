// Package payment defines the interface to the external payment
// collaborator.  The ticketing core only needs the boolean outcome of
// a charge to drive the booking ledger state machine; everything else
// about payment processing lives behind this boundary.
package payment

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPaymentFailed is returned when the collaborator declines a
// charge.  The booking stays PENDING and its holds are kept; the user
// may retry.
var ErrPaymentFailed = errors.New("payment failed")

// Result describes the outcome of a charge.
type Result struct {
	BookingID     string    // idempotency key: the booking being paid
	TransactionID string    // collaborator-side reference
	AmountCents   uint32    // amount charged
	Succeeded     bool      // whether the charge went through
	Reason        string    // failure reason when Succeeded is false
	ProcessedAt   time.Time // when the outcome was first recorded
}

// Gateway is the payment collaborator as seen by the core.  Charge is
// exactly-once per booking: the booking ID is the idempotency key,
// and a repeated Charge for the same booking returns the recorded
// first outcome instead of charging again.
type Gateway interface {
	Charge(ctx context.Context, bookingID string, amountCents uint32) (*Result, error)
}

// SimulatedGateway is an in-process Gateway for development and
// tests.  It succeeds with a configurable probability and records
// every outcome so retries observe the first decision, mirroring the
// idempotency contract a real processor provides.
type SimulatedGateway struct {
	successRate float64
	delay       time.Duration

	mu       sync.Mutex
	outcomes map[string]*Result
}

// NewSimulatedGateway constructs a SimulatedGateway.  successRate is
// clamped into [0, 1]; a rate of 1 makes every first charge succeed,
// which is what tests want.
func NewSimulatedGateway(successRate float64, delay time.Duration) *SimulatedGateway {
	if successRate < 0 {
		successRate = 0
	}
	if successRate > 1 {
		successRate = 1
	}
	return &SimulatedGateway{
		successRate: successRate,
		delay:       delay,
		outcomes:    make(map[string]*Result),
	}
}

// Charge implements Gateway.
func (g *SimulatedGateway) Charge(ctx context.Context, bookingID string, amountCents uint32) (*Result, error) {
	g.mu.Lock()
	if prior, ok := g.outcomes[bookingID]; ok {
		g.mu.Unlock()
		return g.replay(prior)
	}
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.delay):
		}
	}

	res := &Result{
		BookingID:     bookingID,
		TransactionID: "sim_" + uuid.NewString(),
		AmountCents:   amountCents,
		Succeeded:     rand.Float64() < g.successRate,
		ProcessedAt:   time.Now().UTC(),
	}
	if !res.Succeeded {
		res.Reason = "card_declined"
	}

	g.mu.Lock()
	// A concurrent charge may have recorded an outcome meanwhile; the
	// first recorded outcome wins to keep the key exactly-once.
	if prior, ok := g.outcomes[bookingID]; ok {
		g.mu.Unlock()
		return g.replay(prior)
	}
	g.outcomes[bookingID] = res
	g.mu.Unlock()

	if !res.Succeeded {
		return res, ErrPaymentFailed
	}
	return res, nil
}

// replay returns a stored outcome with the error it originally
// produced.
func (g *SimulatedGateway) replay(prior *Result) (*Result, error) {
	cp := *prior
	if !cp.Succeeded {
		return &cp, ErrPaymentFailed
	}
	return &cp, nil
}
