package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChargeSucceeds(t *testing.T) {
	g := NewSimulatedGateway(1.0, 0)
	res, err := g.Charge(context.Background(), "booking-1", 2400)
	require.NoError(t, err)
	assert.True(t, res.Succeeded)
	assert.Equal(t, uint32(2400), res.AmountCents)
	assert.NotEmpty(t, res.TransactionID)
}

func TestChargeFailure(t *testing.T) {
	g := NewSimulatedGateway(0.0, 0)
	res, err := g.Charge(context.Background(), "booking-1", 2400)
	require.ErrorIs(t, err, ErrPaymentFailed)
	assert.False(t, res.Succeeded)
	assert.NotEmpty(t, res.Reason)
}

func TestChargeIdempotentPerBooking(t *testing.T) {
	g := NewSimulatedGateway(1.0, 0)
	ctx := context.Background()

	first, err := g.Charge(ctx, "booking-1", 2400)
	require.NoError(t, err)

	// A retry with the same booking ID replays the recorded outcome
	// instead of charging again.
	second, err := g.Charge(ctx, "booking-1", 2400)
	require.NoError(t, err)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, first.ProcessedAt, second.ProcessedAt)
}

func TestFailedChargeReplaysFailure(t *testing.T) {
	g := NewSimulatedGateway(0.0, 0)
	ctx := context.Background()

	_, err := g.Charge(ctx, "booking-1", 2400)
	require.ErrorIs(t, err, ErrPaymentFailed)

	_, err = g.Charge(ctx, "booking-1", 2400)
	assert.ErrorIs(t, err, ErrPaymentFailed)
}
