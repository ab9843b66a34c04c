package payments

import (
	"context"
	"testing"
	"time"

	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedProcessorAlwaysSucceeds(t *testing.T) {
	processor := NewSimulatedProcessor(WithSuccessRate(1), WithLatency(0))

	for i := 0; i < 10; i++ {
		result, err := processor.Charge(context.Background(), domain.ChargeParams{
			UserID: "user-1", Amount: 5, Currency: "usd",
		})
		require.NoError(t, err)
		assert.True(t, result.Succeeded)
		assert.NotEmpty(t, result.PaymentID)
	}
}

func TestSimulatedProcessorAlwaysDeclines(t *testing.T) {
	processor := NewSimulatedProcessor(WithSuccessRate(0), WithLatency(0))

	result, err := processor.Charge(context.Background(), domain.ChargeParams{
		UserID: "user-1", Amount: 5, Currency: "usd",
	})
	require.NoError(t, err, "a decline is a result, not an error")
	assert.False(t, result.Succeeded)
	assert.Empty(t, result.PaymentID)
}

func TestSimulatedProcessorHonorsContext(t *testing.T) {
	processor := NewSimulatedProcessor(WithLatency(time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := processor.Charge(ctx, domain.ChargeParams{UserID: "user-1", Amount: 5})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
